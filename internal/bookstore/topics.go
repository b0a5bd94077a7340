package bookstore

const TopicChanges = "bookstore.changes"

// Partition key = resource id, so all events of one document keep their order.
func PartitionKey(resourceID string) []byte { return []byte(resourceID) }
