package config

const (
	// TopicJobCreated is the NSQ topic announcing a newly stored job posting.
	TopicJobCreated = "jobs.created"
)
