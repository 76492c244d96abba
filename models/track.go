// Package models defines data structures used across the application.
// File: models/track.go
package models

import "fmt"

// ----------------------- workshop tracks -----------------------

// WorkshopTrack is the workshop a team signs up for.
type WorkshopTrack string

const (
	WorkshopCloud         WorkshopTrack = "Cloud"
	WorkshopAI            WorkshopTrack = "AI"
	WorkshopCybersecurity WorkshopTrack = "Cybersecurity"
	WorkshopNone          WorkshopTrack = "None"
)

// ParseWorkshopTrack maps a raw value onto a WorkshopTrack. An empty value means None.
func ParseWorkshopTrack(s string) (WorkshopTrack, error) {
	switch WorkshopTrack(s) {
	case WorkshopCloud, WorkshopAI, WorkshopCybersecurity, WorkshopNone:
		return WorkshopTrack(s), nil
	case "":
		return WorkshopNone, nil
	}
	return "", fmt.Errorf("unknown workshop track %q", s)
}

// Track returns the capacity track for w; ok is false for None.
func (w WorkshopTrack) Track() (Track, bool) {
	switch w {
	case WorkshopCloud:
		return TrackCloud, true
	case WorkshopAI:
		return TrackAI, true
	case WorkshopCybersecurity:
		return TrackCybersecurity, true
	}
	return "", false
}

// ----------------------- competition tracks -----------------------

// CompetitionTrack is the competition a team enters.
type CompetitionTrack string

const (
	CompetitionHackathon CompetitionTrack = "Hackathon"
	CompetitionPitch     CompetitionTrack = "Pitch"
	CompetitionNone      CompetitionTrack = "None"
)

// ParseCompetitionTrack maps a raw value onto a CompetitionTrack. An empty value means None.
func ParseCompetitionTrack(s string) (CompetitionTrack, error) {
	switch CompetitionTrack(s) {
	case CompetitionHackathon, CompetitionPitch, CompetitionNone:
		return CompetitionTrack(s), nil
	case "":
		return CompetitionNone, nil
	}
	return "", fmt.Errorf("unknown competition track %q", s)
}

// Track returns the capacity track for c; ok is false for None.
func (c CompetitionTrack) Track() (Track, bool) {
	switch c {
	case CompetitionHackathon:
		return TrackHackathon, true
	case CompetitionPitch:
		return TrackPitch, true
	}
	return "", false
}

// ----------------------- capacity tracks -----------------------

// TrackKind separates workshop tracks from competition tracks.
type TrackKind string

const (
	KindWorkshop    TrackKind = "workshop"
	KindCompetition TrackKind = "competition"
)

// Track is a named category with its own capacity limit.
type Track string

const (
	TrackCloud         Track = "Cloud"
	TrackAI            Track = "AI"
	TrackCybersecurity Track = "Cybersecurity"
	TrackHackathon     Track = "Hackathon"
	TrackPitch         Track = "Pitch"
)

// AllTracks lists every capacity track in display order.
var AllTracks = []Track{TrackCloud, TrackAI, TrackCybersecurity, TrackHackathon, TrackPitch}

// ParseTrack maps a selector such as "Cloud" or "Hackathon" onto a Track.
func ParseTrack(s string) (Track, error) {
	for _, t := range AllTracks {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown track %q", s)
}

// Kind reports whether t is a workshop or a competition.
func (t Track) Kind() TrackKind {
	switch t {
	case TrackHackathon, TrackPitch:
		return KindCompetition
	}
	return KindWorkshop
}

// Field is the registration document field that t is counted on.
func (t Track) Field() string {
	if t.Kind() == KindCompetition {
		return "competition_track"
	}
	return "workshop_track"
}
