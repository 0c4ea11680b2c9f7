package schedule

import (
	"errors"
	"time"
)

// ResourceKind discriminates what a reservation occupies.
type ResourceKind string

const (
	KindRoom           ResourceKind = "room"
	KindCustomLocation ResourceKind = "custom_location"
	// KindNone marks equipment-only requests; they never hold a location slot.
	KindNone ResourceKind = "none"
)

// ResourceRef is a tagged reference to the thing being reserved: a catalog
// room, a free-text location, or nothing at all. Exactly one variant is set.
type ResourceRef struct {
	Kind           ResourceKind
	RoomID         uint64
	CustomLocation string
}

func Room(id uint64) ResourceRef          { return ResourceRef{Kind: KindRoom, RoomID: id} }
func CustomLocation(name string) ResourceRef {
	return ResourceRef{Kind: KindCustomLocation, CustomLocation: name}
}
func NoResource() ResourceRef { return ResourceRef{Kind: KindNone} }

// RefFromColumns rebuilds the tagged union from the two nullable DB columns.
// Both set is a data error; room id wins the tie only for legacy rows, so we
// reject instead of guessing.
func RefFromColumns(roomID *uint64, customLocation *string) (ResourceRef, error) {
	switch {
	case roomID != nil && customLocation != nil:
		return ResourceRef{}, errors.New("resource ref: both room id and custom location set")
	case roomID != nil:
		return Room(*roomID), nil
	case customLocation != nil:
		return CustomLocation(*customLocation), nil
	default:
		return NoResource(), nil
	}
}

// SameResource reports whether two refs occupy the same slot. Custom
// locations match case-sensitively; KindNone never collides with anything.
func SameResource(a, b ResourceRef) bool {
	if a.Kind != b.Kind || a.Kind == KindNone {
		return false
	}
	if a.Kind == KindRoom {
		return a.RoomID == b.RoomID
	}
	return a.CustomLocation == b.CustomLocation
}

// Window is a half-open reservation interval [StartsAt, EndsAt).
type Window struct {
	StartsAt time.Time
	EndsAt   time.Time
}

func (w Window) Valid() bool { return w.StartsAt.Before(w.EndsAt) }

// Overlaps implements strict interval overlap: touching boundaries
// (a.EndsAt == b.StartsAt) do not conflict.
func (w Window) Overlaps(other Window) bool {
	return w.StartsAt.Before(other.EndsAt) && other.StartsAt.Before(w.EndsAt)
}
