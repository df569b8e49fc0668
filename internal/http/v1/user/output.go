package user

// UserOutput is returned by every user operation that yields the snapshot.
type UserOutput struct {
	Body User
}

// AvailabilityOutput for GET /user/username-availability
type AvailabilityOutput struct {
	Body Availability
}
