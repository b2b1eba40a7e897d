package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/skip2/go-qrcode"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
)

var (
	meowWhatsapp *whatsmeow.Client
	qrCodeSent   bool
	mu           sync.Mutex
)

// InitBroadcast boots the out-of-band push channels: SMTP auth for email and
// a whatsmeow client for WhatsApp. A missing WhatsApp session triggers the QR
// pairing flow; the QR image is mailed to the configured sender address.
func InitBroadcast() (*whatsmeow.Client, smtp.Auth, *string, *string, error) {
	log := GetLogrusInstance()

	emailSender, err := getEmailSender()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	emailPassword, err := getEmailPassword()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	smtpHost, err := getSMTPHost()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	smtpPort, err := getSMTPPort()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	smtpAuth := smtp.PlainAuth("", *emailSender, *emailPassword, *smtpHost)
	smtpAddr := fmt.Sprintf("%s:%s", *smtpHost, *smtpPort)

	log.Info("SMTP initialized")

	container, err := sqlstore.New("pgx", GetDatabaseURL(), nil)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open whatsmeow store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to load whatsmeow device: %w", err)
	}

	mClient := whatsmeow.NewClient(deviceStore, nil)
	meowWhatsapp = mClient

	if meowWhatsapp.Store.ID == nil {
		qrChan, _ := meowWhatsapp.GetQRChannel(context.Background())
		if err := meowWhatsapp.Connect(); err != nil {
			return nil, nil, nil, nil, err
		}

		for evt := range qrChan {
			if evt.Event == "code" {
				mu.Lock()
				if !qrCodeSent {
					log.Warn("No WhatsApp session was found, admin must scan the QR code for broadcast to work")

					if err := generateQRCode(evt.Code, "qrcode.png"); err != nil {
						mu.Unlock()
						return nil, nil, nil, nil, err
					}

					if err := sendQRtoEmail(smtpAddr, &smtpAuth, *emailSender, "qrcode.png"); err != nil {
						mu.Unlock()
						return nil, nil, nil, nil, err
					}
					log.Infof("Image of QR Code is sent to %s, go ahead and scan it", *emailSender)

					qrCodeSent = true
				}
				mu.Unlock()
			} else {
				log.Infof("WhatsApp login event: %s", evt.Event)
			}
		}
	} else {
		if err := meowWhatsapp.Connect(); err != nil {
			return nil, nil, nil, nil, err
		}
		log.Info("WhatsMeow initialized")
	}

	return meowWhatsapp, smtpAuth, &smtpAddr, emailSender, nil
}

func getEmailSender() (*string, error) {
	sender := os.Getenv("EMAIL_SENDER")
	if sender == "" {
		return nil, fmt.Errorf("email sender invalid, value : %s", sender)
	}
	return &sender, nil
}

func getEmailPassword() (*string, error) {
	pass := os.Getenv("EMAIL_SENDER_PASSWORD")
	if pass == "" {
		return nil, fmt.Errorf("email password invalid, value : %s", pass)
	}
	return &pass, nil
}

func getSMTPHost() (*string, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("smtp host invalid, value : %s", host)
	}
	return &host, nil
}

func getSMTPPort() (*string, error) {
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		return nil, fmt.Errorf("smtp port invalid, value : %s", port)
	}
	return &port, nil
}

func generateQRCode(data, filePath string) error {
	err := qrcode.WriteFile(data, qrcode.Medium, 256, filePath)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %v", err)
	}
	return nil
}

func sendQRtoEmail(smtpAddr string, smtpAuth *smtp.Auth, emailSender string, qrFilePath string) error {
	subject := "Subject: SCHOOLMS QR Code Login\n"
	body := "Please find the attached QR code for login.\n\n"

	fileData, err := os.ReadFile(qrFilePath)
	if err != nil {
		return fmt.Errorf("failed to read QR code file: %v", err)
	}

	fileName := filepath.Base(qrFilePath)
	boundary := "my-boundary-12345"

	msg := []byte("From: " + emailSender + "\n" +
		"To: " + emailSender + "\n" +
		subject +
		"MIME-Version: 1.0\n" +
		"Content-Type: multipart/mixed; boundary=" + boundary + "\n\n" +
		"--" + boundary + "\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\n\n" +
		body + "\n\n" +
		"--" + boundary + "\n" +
		"Content-Type: image/png\n" +
		"Content-Disposition: attachment; filename=\"" + fileName + "\"\n" +
		"Content-Transfer-Encoding: base64\n\n")

	msg = append(msg, []byte(base64.StdEncoding.EncodeToString(fileData))...)
	msg = append(msg, []byte("\n--"+boundary+"--")...)

	err = smtp.SendMail(smtpAddr, *smtpAuth, emailSender, []string{emailSender}, msg)
	if err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
