package model

// Movie is the minimal catalog record the booking core reads.  Full
// movie management lives outside this service.
type Movie struct {
	ID    uint64 // movies.id
	Title string // movies.title
}

// Theatre lists the daily show times used when showtimes for a date
// are created on demand.
type Theatre struct {
	ID        uint64   // theatres.id
	Name      string   // theatres.name
	City      string   // theatres.city
	ShowTimes []string // theatres.show_times (JSON)
}
