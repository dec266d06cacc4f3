package models

import "time"

// AdminEventView is the reporting projection used by the admin page and the
// attendee export. Description, location and capacity are left out.
type AdminEventView struct {
	ID         string     `json:"id"`
	EventTitle string     `json:"eventTitle"`
	EventDate  time.Time  `json:"eventDate"`
	Image      string     `json:"image"`
	Attendees  []Attendee `json:"attendees"`
}

type Attendee struct {
	Name             string     `json:"name"`
	PhoneNumber      string     `json:"phoneNumber"`
	AttendDate       *time.Time `json:"attendDate,omitempty"`
	RegistrationDate time.Time  `json:"registrationDate"`
}

func NewAdminEventView(e Event) AdminEventView {
	attendees := make([]Attendee, 0, len(e.Registrations))
	for _, r := range e.Registrations {
		attendees = append(attendees, Attendee{
			Name:             r.Name,
			PhoneNumber:      r.PhoneNumber,
			AttendDate:       r.AttendDate,
			RegistrationDate: r.RegistrationDate,
		})
	}
	return AdminEventView{
		ID:         e.ID,
		EventTitle: e.Title,
		EventDate:  e.Date,
		Image:      e.Image,
		Attendees:  attendees,
	}
}
