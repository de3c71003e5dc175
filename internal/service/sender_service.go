package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"tavolo/internal/entities"
	"tavolo/internal/utils"
)

type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

// SendReservationEmail renders and sends the guest-facing email for a
// reservation in the given lifecycle status ("received", "confirmed",
// "cancelled", "tomorrow"). Times are shown in the restaurant's timezone.
// Delivery happens on a goroutine so callers never wait on SendGrid.
func (s *SenderService) SendReservationEmail(reservation entities.ReservationResponse, timezone, status string) {
	loc := utils.LoadLocation(timezone)

	emailData := entities.ReservationEmailData{
		GuestName:         reservation.FirstName + " " + reservation.LastName,
		ReservationCode:   reservation.Code,
		RestaurantName:    reservation.RestaurantName,
		PartySize:         reservation.PartySize,
		DateTimeFormatted: reservation.ReservationTime.In(loc).Format("Monday, 02 Jan 2006 at 15:04"),
		OccasionType:      reservation.OccasionType,
		SpecialRequests:   reservation.SpecialRequests,
		Status:            status,
		CurrentYear:       time.Now().In(loc).Year(),
	}

	emailSubject := fmt.Sprintf("Your table at %s is %s - Code: %s",
		emailData.RestaurantName, status, emailData.ReservationCode)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour reservation at %s is %s.\n\n"+
			"Reservation details:\n"+
			"Confirmation code: %s\n"+
			"Party of %d\n"+
			"When: %s\n\n"+
			"Show your confirmation code when you arrive.\n\n"+
			"Thank you for booking with Tavolo.",
		emailData.GuestName, emailData.RestaurantName, status,
		emailData.ReservationCode, emailData.PartySize, emailData.DateTimeFormatted,
	)

	tmplPath := filepath.Join("internal", "templates", "reservation_email.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("ALERT: failed to parse email template (%s): %v", tmplPath, err)
		return
	}

	var htmlBodyBuffer bytes.Buffer
	if err := tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
		log.Printf("ALERT: failed to render email template for reservation %s: %v", emailData.ReservationCode, err)
		return
	}
	htmlBody := htmlBodyBuffer.String()

	go func(toEmail, guestName, subject, plainBody, htmlBodyContent string) {
		errEmail := SendEmailWithSendGrid(toEmail, guestName, subject, plainBody, htmlBodyContent)
		if errEmail != nil {
			log.Printf("ALERT (async): email for reservation %s failed: %v", emailData.ReservationCode, errEmail)
		}
	}(reservation.Email, emailData.GuestName, emailSubject, plainTextBody, htmlBody)
}

// SendReservationSMS sends the short notification for a status change.
func (s *SenderService) SendReservationSMS(reservation entities.ReservationResponse, timezone, status string) {
	loc := utils.LoadLocation(timezone)

	smsMessage := fmt.Sprintf("Tavolo: your table at %s is %s!\nCode %s, party of %d, %s.\nDetails in your email.",
		reservation.RestaurantName, status,
		reservation.Code, reservation.PartySize,
		reservation.ReservationTime.In(loc).Format("02/01 15:04"),
	)

	go func(toNumber, body string) {
		if errSMS := SendSMS(toNumber, body); errSMS != nil {
			log.Printf("ALERT: SMS for reservation %s to %s failed: %v", reservation.Code, toNumber, errSMS)
		}
	}(reservation.Phone, smsMessage)
}
