package service

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/core/auth/structs"
	"github.com/taskhive/taskhive/net/cookie"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/security/jwt"
	"github.com/taskhive/taskhive/utils"
)

func (s *Service) setCookies(c *gin.Context, pair *jwt.TokenPair) {
	cookie.SetTokens(c.Writer, pair.AccessToken, pair.RefreshToken, cookie.Options{
		Secure:        c.Request.TLS != nil,
		AccessMaxAge:  s.tokens.AccessExpiry(),
		RefreshMaxAge: s.tokens.RefreshExpiry(),
	})
}

func (s *Service) HandleRegister(c *gin.Context) {
	var req structs.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	u, err := s.Register(c.Request.Context(), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.WithStatusCode(c.Writer, http.StatusCreated, u)
}

func (s *Service) HandleLogin(c *gin.Context) {
	var req structs.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	pair, err := s.Login(c.Request.Context(), &req)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	s.setCookies(c, pair)
	resp.Success(c.Writer, pair)
}

func (s *Service) HandleRefresh(c *gin.Context) {
	var req structs.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	pair, err := s.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	s.setCookies(c, pair)
	resp.Success(c.Writer, pair)
}

func (s *Service) HandleLogout(c *gin.Context) {
	cookie.Clear(c.Writer, "")
	resp.WithStatusCode(c.Writer, http.StatusNoContent)
}

func (s *Service) HandleSendOTP(c *gin.Context) {
	var req structs.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	if err := s.SendOTP(c.Request.Context(), req.Email); err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, "OTP sent to "+req.Email)
}

func (s *Service) HandleVerifyOTP(c *gin.Context) {
	var req structs.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.Fail(c.Writer, resp.FromError(utils.TranslateError(err)))
		return
	}
	u, err := s.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	resp.Success(c.Writer, u)
}

// HandleOAuthRedirect sends the browser to the provider consent page.
func (s *Service) HandleOAuthRedirect(c *gin.Context) {
	target, err := s.OAuthURL(c.Param("provider"))
	if err != nil {
		resp.Fail(c.Writer, resp.FromError(err))
		return
	}
	c.Redirect(http.StatusFound, target)
}

// HandleOAuthCallback completes the sign-in and redirects to the frontend.
func (s *Service) HandleOAuthCallback(c *gin.Context) {
	ctx := c.Request.Context()
	if s.oauthCfg == nil {
		resp.Fail(c.Writer, resp.NotFound("OAuth sign-in is not enabled"))
		return
	}
	if e := c.Query("error"); e != "" {
		s.logger.Warn(ctx, "OAuth provider returned an error", "provider", c.Param("provider"), "error", e)
		c.Redirect(http.StatusFound, s.FailureRedirect(e))
		return
	}
	token, err := s.OAuthLogin(ctx, c.Param("provider"), c.Query("state"), c.Query("code"))
	if err != nil {
		s.logger.Warn(ctx, "OAuth sign-in failed", "provider", c.Param("provider"), "error", err)
		c.Redirect(http.StatusFound, s.FailureRedirect("oauth_failed"))
		return
	}
	cookie.SetTokens(c.Writer, token, "", cookie.Options{
		Secure:       c.Request.TLS != nil,
		AccessMaxAge: s.tokens.AccessExpiry(),
	})
	c.Redirect(http.StatusFound, s.SuccessRedirect(token))
}
