package utils

const (
	CronExecuted     = "Cron run completed"
	CronStatus       = "Cron status fetched"
	QueueSizes       = "Queue sizes fetched"
	ItemsEnqueued    = "Items enqueued"
	ProcessorsListed = "Processors listed"
	EndpointStatus   = "Endpoint status fetched"
	EndpointSaved    = "Endpoint saved"
	ServiceReady     = "Service is ready"
)
