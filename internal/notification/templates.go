package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	domainAdmin "rigor-logistics/internal/domain/admin"
	domainReimbursement "rigor-logistics/internal/domain/reimbursement"
	domainTrip "rigor-logistics/internal/domain/trip"
	domainTrucker "rigor-logistics/internal/domain/trucker"
)

var (
	tripAssignedTmpl = template.Must(template.New("trip_assigned").Parse(
		`<p>Hello {{.Name}},</p>
<p>You have been assigned trip #{{.TripID}} from <b>{{.From}}</b> to <b>{{.To}}</b>, starting {{.Start}}.</p>
<p>Distance: {{.Distance}} km.</p>`))

	tripCompletedTmpl = template.Must(template.New("trip_completed").Parse(
		`<p>Hello {{.Name}},</p>
<p>Trip #{{.TripID}} from <b>{{.From}}</b> to <b>{{.To}}</b> was completed by {{.Trucker}} at {{.End}}.</p>`))

	reimbursementApprovedTmpl = template.Must(template.New("reimbursement_approved").Parse(
		`<p>Hello {{.Name}},</p>
<p>Your reimbursement #{{.ID}} for trip #{{.TripID}} of {{.Amount}} has been approved.</p>`))
)

const timeLayout = "02 Jan 2006 15:04 MST"

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func TripAssigned(trucker *domainTrucker.Trucker, trip *domainTrip.Trip) Message {
	return Message{
		To:      []string{trucker.Email},
		Subject: fmt.Sprintf("New trip assigned: %s to %s", trip.StartLocation, trip.EndLocation),
		HTML: render(tripAssignedTmpl, map[string]any{
			"Name":     trucker.Name,
			"TripID":   trip.ID,
			"From":     trip.StartLocation,
			"To":       trip.EndLocation,
			"Start":    trip.StartTime.Format(timeLayout),
			"Distance": trip.Distance,
		}),
	}
}

func TripCompleted(admin *domainAdmin.Admin, trucker *domainTrucker.Trucker, trip *domainTrip.Trip) Message {
	end := time.Now().UTC()
	if trip.EndTime != nil {
		end = *trip.EndTime
	}
	truckerName := fmt.Sprintf("trucker #%d", trip.TruckerID)
	if trucker != nil {
		truckerName = trucker.Name
	}
	return Message{
		To:      []string{admin.Email},
		Subject: fmt.Sprintf("Trip #%d completed", trip.ID),
		HTML: render(tripCompletedTmpl, map[string]any{
			"Name":    admin.Name,
			"TripID":  trip.ID,
			"From":    trip.StartLocation,
			"To":      trip.EndLocation,
			"Trucker": truckerName,
			"End":     end.Format(timeLayout),
		}),
	}
}

func ReimbursementApproved(trucker *domainTrucker.Trucker, r *domainReimbursement.Reimbursement) Message {
	return Message{
		To:      []string{trucker.Email},
		Subject: fmt.Sprintf("Reimbursement #%d approved", r.ID),
		HTML: render(reimbursementApprovedTmpl, map[string]any{
			"Name":   trucker.Name,
			"ID":     r.ID,
			"TripID": r.TripID,
			"Amount": r.Amount.String(),
		}),
	}
}
