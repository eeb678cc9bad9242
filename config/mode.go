package config

import "time"

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Interval is the minimum time between two automatic scheduler executions.
func (s SchedulerConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSec) * time.Second
}

// PrimaryQueue is the queue automatic executions enqueue enabled endpoints on.
func (q QueuesConfig) PrimaryQueue() string {
	if len(q.Names) == 0 {
		return ""
	}
	return q.Names[0]
}
