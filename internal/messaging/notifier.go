package messaging

import (
	"context"
	"fmt"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/booking"
)

// SystemSender marks messages generated by the platform rather than a user.
const SystemSender = "system"

// BookingNotifier posts status updates into the booking's tenant/landlord
// thread so both parties see the transition in the conversation.
type BookingNotifier struct {
	Store Store
}

func (n BookingNotifier) NotifyStatusChanged(ctx context.Context, b booking.Booking, entry booking.TimelineEntry) error {
	t, err := n.Store.CreateOrReuseThread(ctx, "booking", b.ID, []string{b.TenantID, b.LandlordID})
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Booking moved to %s", entry.Status)
	if entry.Note != "" {
		body += ": " + entry.Note
	}
	_, err = n.Store.Post(ctx, t.ID, SystemSender, body)
	return err
}
