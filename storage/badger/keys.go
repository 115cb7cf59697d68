package badger

import "fmt"

// Key prefixes for different data types
const (
	checkpointPrefix = "chkpt"
)

// makeCheckpointKey generates the key for a job's checkpoint record.
// Format: prefix:job
func makeCheckpointKey(job string) []byte {
	return []byte(fmt.Sprintf("%s:%s", checkpointPrefix, job))
}
