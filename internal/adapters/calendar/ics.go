package calendar

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"talkmaster/internal/domain"
)

const uidDomain = "talkmaster"

type icsRenderer struct {
	productID string
	now       func() time.Time
}

// NewICSRenderer returns a CalendarRenderer producing a PUBLISH iCalendar feed,
// one VEVENT per planning entry.
func NewICSRenderer(productID string) domain.CalendarRenderer {
	return &icsRenderer{productID: productID, now: time.Now}
}

func (r *icsRenderer) Render(entries []*domain.PlanningEntry) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(r.productID)

	stamp := r.now().UTC()
	for _, e := range entries {
		if e.Planning == nil || e.Talk == nil {
			continue
		}
		start := e.Planning.StartsAt.UTC()
		ev := cal.AddEvent(fmt.Sprintf("%s@%s", e.Planning.ID, uidDomain))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(time.Duration(e.Talk.Duration) * time.Minute))
		ev.SetSummary(e.Talk.Title)
		ev.SetDescription(describe(e))
		ev.SetLocation(e.RoomName)
		if e.Talk.Topic != "" {
			ev.SetProperty(ical.ComponentPropertyCategories, e.Talk.Topic)
		}
	}
	return []byte(cal.Serialize()), nil
}

func describe(e *domain.PlanningEntry) string {
	var b strings.Builder
	if e.SpeakerName != "" {
		fmt.Fprintf(&b, "Speaker: %s\n", e.SpeakerName)
	}
	fmt.Fprintf(&b, "Level: %s\n", e.Talk.Level)
	if e.Talk.Description != "" {
		b.WriteString(e.Talk.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
