package scheduler

// GetTaskStatusMap returns a copy of the internal status map.
// This is exported for testing purposes only.
func (s *Scheduler) GetTaskStatusMap() map[string]TaskStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statusMap := make(map[string]TaskStatus, len(s.taskStatus))
	for k, v := range s.taskStatus {
		statusMap[k] = v
	}
	return statusMap
}
