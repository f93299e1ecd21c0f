package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"petroffparking/internal/db"
	"petroffparking/internal/entities"
)

type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func formatAmount(amountCents int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(amountCents)/100, currency)
}

// SendReceiptEmail mails the receipt for a settled visitor stay. Rendering
// happens inline; the actual send runs in the background so a slow mail
// provider never blocks the request.
func (s *SenderService) SendReceiptEmail(sess *db.Session, vehicle *db.Vehicle, toEmail, currency string) {
	var amountCents int64
	if sess.AmountCharged != nil {
		amountCents = *sess.AmountCharged
	}
	exitTime := time.Now().UTC()
	if sess.EndedAt != nil {
		exitTime = *sess.EndedAt
	}

	emailData := entities.ReceiptEmailData{
		SessionID:          sess.ID,
		PlateFull:          fmt.Sprintf("%s %s", vehicle.RegionCode, vehicle.PlateText),
		EntryTimeFormatted: sess.StartedAt.Format("02 Jan 2006 15:04 MST"),
		ExitTimeFormatted:  exitTime.Format("02 Jan 2006 15:04 MST"),
		AmountFormatted:    formatAmount(amountCents, currency),
		CurrentYear:        time.Now().UTC().Year(),
	}

	emailSubject := fmt.Sprintf("Your parking receipt - Session #%d", sess.ID)
	plainTextBody := fmt.Sprintf(
		"Hello,\n\nThank you for parking with PetroffParking.\n\n"+
			"Receipt details:\n"+
			"Session: #%d\n"+
			"Vehicle: %s\n"+
			"Entry: %s\n"+
			"Exit: %s\n"+
			"Amount: %s\n\n"+
			"PetroffParking. All rights reserved.",
		emailData.SessionID, emailData.PlateFull,
		emailData.EntryTimeFormatted, emailData.ExitTimeFormatted, emailData.AmountFormatted,
	)

	htmlBody := plainTextBody
	tmplPath := filepath.Join("internal", "templates", "receipt_email.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("ALERT: could not parse receipt email template (%s): %v", tmplPath, err)
	} else {
		var htmlBodyBuffer bytes.Buffer
		if err := tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
			log.Printf("ALERT: could not render receipt email for session %d: %v", emailData.SessionID, err)
		} else {
			htmlBody = htmlBodyBuffer.String()
		}
	}

	go func(toEmail, subject, plainBody, htmlBodyContent string) {
		if errEmail := SendEmailWithSendGrid(toEmail, "", subject, plainBody, htmlBodyContent); errEmail != nil {
			log.Printf("ALERT (async): receipt email for session %d failed: %v", emailData.SessionID, errEmail)
		}
	}(toEmail, emailSubject, plainTextBody, htmlBody)
}

// SendPaymentLinkEmail mails the hosted checkout link for a pending charge.
func (s *SenderService) SendPaymentLinkEmail(toEmail, toName, description string, amountCents int64, currency, checkoutURL string) {
	subject := fmt.Sprintf("Payment due - %s", description)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\n%s is due for %s.\n\nPay here: %s\n\nPetroffParking. All rights reserved.",
		toName, formatAmount(amountCents, currency), description, checkoutURL)

	go func() {
		if errEmail := SendEmailWithSendGrid(toEmail, toName, subject, plainTextBody, plainTextBody); errEmail != nil {
			log.Printf("ALERT (async): payment link email (%s) failed: %v", description, errEmail)
		}
	}()
}

// SendPaymentLinkSMS texts the driver the hosted checkout link for a pending
// charge.
func (s *SenderService) SendPaymentLinkSMS(toNumber, description string, amountCents int64, currency, checkoutURL string) {
	smsMessage := fmt.Sprintf("PetroffParking: %s due for %s.\nPay here: %s",
		formatAmount(amountCents, currency), description, checkoutURL)

	go func() {
		if errSMS := SendSMS(toNumber, smsMessage); errSMS != nil {
			log.Printf("ALERT: payment link SMS (%s) failed: %v", description, errSMS)
		}
	}()
}
