package config

import "fmt"

// QueueKeyStruct names the Redis queues drained by background workers.
type QueueKeyStruct struct {
	NotificationsQueue string
}

// QueueKey is the shared queue name registry.
var QueueKey = &QueueKeyStruct{
	NotificationsQueue: "notify_completions_queue",
}

// ProctorMonitorChannel returns the Redis PubSub channel carrying live
// proctoring updates for a test.
func ProctorMonitorChannel(testID int) string {
	return fmt.Sprintf("test:%d:proctor_monitor", testID)
}
