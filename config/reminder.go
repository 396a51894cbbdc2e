package config

import (
	"time"

	"github.com/spf13/viper"
)

// Reminder due-date reminder config struct
type Reminder struct {
	Enabled  bool
	Interval time.Duration
	// Window is how far ahead of now a due date counts as due soon.
	Window    time.Duration
	Workers   int
	QueueSize int
}

func getReminderConfig(v *viper.Viper) *Reminder {
	return &Reminder{
		Enabled:   getBoolOrDefault(v, "reminder.enabled", true),
		Interval:  getDurationOrDefault(v, "reminder.interval", 30*time.Minute),
		Window:    getDurationOrDefault(v, "reminder.window", time.Hour),
		Workers:   getIntOrDefault(v, "reminder.workers", 4),
		QueueSize: getIntOrDefault(v, "reminder.queue_size", 256),
	}
}

// Activity activity log config struct
type Activity struct {
	// Store is sql or mongo.
	Store           string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

func getActivityConfig(v *viper.Viper) *Activity {
	return &Activity{
		Store:           getStringOrDefault(v, "activity.store", "sql"),
		MongoURI:        getStringOrDefault(v, "activity.mongo_uri", "mongodb://localhost:27017"),
		MongoDatabase:   getStringOrDefault(v, "activity.mongo_database", "taskhive"),
		MongoCollection: getStringOrDefault(v, "activity.mongo_collection", "activity_logs"),
	}
}
