package adminaction

type ActionType string

const (
	ActionForceCancelBooking   ActionType = "FORCE_CANCEL_BOOKING"
	ActionMarkPaymentCompleted ActionType = "MARK_PAYMENT_COMPLETED"
	ActionMarkPaymentFailed    ActionType = "MARK_PAYMENT_FAILED"
	ActionRefundPayment        ActionType = "REFUND_PAYMENT"
	ActionResolveDispute       ActionType = "RESOLVE_DISPUTE"
	ActionCloseDispute         ActionType = "CLOSE_DISPUTE"
)
