package domain

import (
	"sort"
	"time"
)

// StatusWindow is how long a status stays visible after it is posted.
const StatusWindow = 24 * time.Hour

func StatusCutoff(now time.Time) time.Time {
	return now.Add(-StatusWindow)
}

// VisibleAt is true while now-Timestamp is strictly below the window.
func (s Status) VisibleAt(now time.Time) bool {
	return now.Sub(s.Timestamp) < StatusWindow
}

type StatusPartition struct {
	Own    []Status
	Others []Status
}

// PartitionStatuses splits visible statuses into the caller's own posts and one
// entry per contact. Own posts and contact entries are ordered newest first.
func PartitionStatuses(statuses []Status, selfID string, contacts []string, now time.Time) StatusPartition {
	allowed := make(map[string]struct{}, len(contacts))
	for _, id := range contacts {
		allowed[id] = struct{}{}
	}
	var own, others []Status
	for _, st := range statuses {
		if !st.VisibleAt(now) {
			continue
		}
		if st.Poster.UserID == selfID {
			own = append(own, st)
			continue
		}
		if _, ok := allowed[st.Poster.UserID]; ok {
			others = append(others, st)
		}
	}
	sortNewestFirst(own)
	return StatusPartition{Own: own, Others: LatestPerPoster(others)}
}

// LatestPerPoster keeps the status with the greatest timestamp for each poster.
// Equal timestamps fall back to the greater status id.
func LatestPerPoster(statuses []Status) []Status {
	latest := make(map[string]Status, len(statuses))
	for _, st := range statuses {
		cur, ok := latest[st.Poster.UserID]
		if !ok || newer(st, cur) {
			latest[st.Poster.UserID] = st
		}
	}
	out := make([]Status, 0, len(latest))
	for _, st := range latest {
		out = append(out, st)
	}
	sortNewestFirst(out)
	return out
}

// StatusesBy returns the visible statuses of one poster, oldest first.
func StatusesBy(statuses []Status, posterID string, now time.Time) []Status {
	var out []Status
	for _, st := range statuses {
		if st.Poster.UserID == posterID && st.VisibleAt(now) {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return newer(out[j], out[i]) })
	return out
}

func newer(a, b Status) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.After(b.Timestamp)
	}
	return a.StatusID > b.StatusID
}

func sortNewestFirst(statuses []Status) {
	sort.SliceStable(statuses, func(i, j int) bool { return newer(statuses[i], statuses[j]) })
}

// SortMessages orders messages by timestamp, then id, ascending.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].Timestamp.Equal(msgs[j].Timestamp) {
			return msgs[i].Timestamp.Before(msgs[j].Timestamp)
		}
		return msgs[i].MessageID < msgs[j].MessageID
	})
}
