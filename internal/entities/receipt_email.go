package entities

type ReceiptEmailData struct {
	SessionID          int
	PlateFull          string
	EntryTimeFormatted string
	ExitTimeFormatted  string
	AmountFormatted    string
	CurrentYear        int
}

type ReceiptEmailRequest struct {
	SessionID int    `json:"session_id"`
	Email     string `json:"email"`
}
