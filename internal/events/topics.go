package events

// Topic constants for domain events emitted by a POS session.
const (
	TopicSaleCompleted = "sale.completed"
	TopicCartVoided    = "cart.voided"
)

// DefaultTopics lists the topics a session emits.
func DefaultTopics() []string {
	return []string{
		TopicSaleCompleted,
		TopicCartVoided,
	}
}
