// Package ctxutil carries request-scoped values (trace id, authenticated
// user) through context.Context and bridges them with *gin.Context.
package ctxutil
