// File: services/capacity.go
package services

import (
	"conference-desk/config"
	"conference-desk/models"
)

// SlotStatus is the derived view of one capacity bucket.
type SlotStatus struct {
	Used      int  `json:"used"`
	Max       int  `json:"max"`
	Remaining int  `json:"remaining"`
	Closed    bool `json:"closed"`
}

// Evaluate derives remaining and closed from a used count and a limit.
// Negative inputs count as zero; equality closes the bucket.
func Evaluate(used, max int) SlotStatus {
	if used < 0 {
		used = 0
	}
	if max < 0 {
		max = 0
	}
	remaining := max - used
	if remaining < 0 {
		remaining = 0
	}
	return SlotStatus{Used: used, Max: max, Remaining: remaining, Closed: used >= max}
}

// Ledger maps tracks onto their configured limits.
type Ledger struct {
	limits config.CapacityLimits
}

// NewLedger builds a ledger from the configured limits.
func NewLedger(limits config.CapacityLimits) *Ledger {
	return &Ledger{limits: limits}
}

// Limit returns the configured maximum for t.
func (l *Ledger) Limit(t models.Track) int {
	switch t {
	case models.TrackCloud:
		return l.limits.Cloud
	case models.TrackAI:
		return l.limits.AI
	case models.TrackCybersecurity:
		return l.limits.Cybersecurity
	case models.TrackHackathon:
		return l.limits.Hackathon
	case models.TrackPitch:
		return l.limits.Pitch
	}
	return 0
}

// Track evaluates t against its limit.
func (l *Ledger) Track(t models.Track, used int) SlotStatus {
	return Evaluate(used, l.Limit(t))
}

// Event evaluates the global participant cap.
func (l *Ledger) Event(total int) SlotStatus {
	return Evaluate(total, l.limits.MaxParticipants)
}

// DirectJoinAvailable reports whether total is past the soft threshold.
func (l *Ledger) DirectJoinAvailable(total int) bool {
	return total > l.limits.DirectJoinThreshold
}

// DirectJoinThreshold returns the configured soft threshold.
func (l *Ledger) DirectJoinThreshold() int {
	return l.limits.DirectJoinThreshold
}
