package simulation

// appendDistinct appends floors to the queue and then deduplicates the whole
// queue keeping the first occurrence of each floor.
func appendDistinct(queue []int, floors ...int) []int {
	queue = append(queue, floors...)

	seen := make(map[int]bool, len(queue))
	out := queue[:0]
	for _, floor := range queue {
		if seen[floor] {
			continue
		}
		seen[floor] = true
		out = append(out, floor)
	}
	return out
}

// queueFromRequests rebuilds a destination queue from the pickup and drop-off
// floors of the given requests
func queueFromRequests(requests []*Request) []int {
	var queue []int
	for _, req := range requests {
		queue = appendDistinct(queue, req.From, req.To)
	}
	return queue
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
