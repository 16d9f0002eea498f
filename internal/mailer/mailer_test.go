package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  []byte
}

func testMailer(t *testing.T, cfg Config) (*SMTPMailer, *[]sentMail) {
	t.Helper()
	var sent []sentMail
	m := NewSMTPMailer(cfg, nil).WithSendFunc(func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: msg})
		return nil
	})
	m.now = func() time.Time { return time.Date(2025, time.March, 14, 12, 0, 0, 0, timeutil.Istanbul) }
	return m, &sent
}

func configured() Config {
	return Config{
		Server:   "smtp.example.com",
		Port:     587,
		User:     "servis@example.com",
		Password: "secret",
		To:       []string{"a@example.com", "b@example.com"},
	}
}

func writePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Is_Emri_No_1_plaka_yok_Test_20250314.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test content"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSendWorkOrder(t *testing.T) {
	m, sent := testMailer(t, configured())
	doc := &models.WorkOrderDocument{Order: models.WorkOrderInput{OrderNo: 1, CustomerTitle: "Usta Oto", Plate: "20 AB 1"}}

	if err := m.SendWorkOrder(context.Background(), doc, writePDF(t)); err != nil {
		t.Fatalf("SendWorkOrder failed: %v", err)
	}
	if len(*sent) != 1 {
		t.Fatalf("Expected one message, got %d", len(*sent))
	}
	s := (*sent)[0]
	if s.addr != "smtp.example.com:587" || s.from != "servis@example.com" || len(s.to) != 2 {
		t.Errorf("Unexpected envelope %+v", s)
	}

	msg, err := mail.ReadMessage(bytes.NewReader(s.msg))
	if err != nil {
		t.Fatalf("Message does not parse: %v", err)
	}
	subject, err := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	if err != nil {
		t.Fatalf("Subject does not decode: %v", err)
	}
	if subject != "Servis İş Emri - 20 AB 1 - Usta Oto" {
		t.Errorf("Unexpected subject %q", subject)
	}

	mediaType, params, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("Expected multipart/mixed, got %q (%v)", mediaType, err)
	}
	r := multipart.NewReader(msg.Body, params["boundary"])

	text, err := r.NextPart()
	if err != nil {
		t.Fatalf("Missing text part: %v", err)
	}
	body, _ := io.ReadAll(text)
	if string(body) != "14.03.2025 tarihine ait iş emri PDF olarak ekte gönderilmiştir." {
		t.Errorf("Unexpected body %q", body)
	}

	att, err := r.NextPart()
	if err != nil {
		t.Fatalf("Missing attachment: %v", err)
	}
	if att.FileName() != "Is_Emri_No_1_plaka_yok_Test_20250314.pdf" {
		t.Errorf("Unexpected attachment name %q", att.FileName())
	}
	if att.Header.Get("Content-Transfer-Encoding") != "base64" {
		t.Errorf("Expected base64 attachment")
	}
	raw, _ := io.ReadAll(att)
	if !strings.HasPrefix(string(raw), "JVBERi0xLjQg") {
		t.Errorf("Unexpected attachment payload %q", raw)
	}
}

func TestSendMonthlyReport(t *testing.T) {
	m, sent := testMailer(t, configured())
	report := &models.MonthlyReport{Month: 2, Year: 2025}

	if err := m.SendMonthlyReport(context.Background(), report, writePDF(t)); err != nil {
		t.Fatalf("SendMonthlyReport failed: %v", err)
	}
	msg, err := mail.ReadMessage(bytes.NewReader((*sent)[0].msg))
	if err != nil {
		t.Fatalf("Message does not parse: %v", err)
	}
	subject, _ := new(mime.WordDecoder).DecodeHeader(msg.Header.Get("Subject"))
	if subject != "Aylık İş Evrakı Raporu - Şubat 2025" {
		t.Errorf("Unexpected subject %q", subject)
	}
}

func TestSendNotConfigured(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"no user", func(c *Config) { c.User = "" }},
		{"no password", func(c *Config) { c.Password = "" }},
		{"no recipients", func(c *Config) { c.To = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := configured()
			tt.mod(&cfg)
			m, sent := testMailer(t, cfg)
			err := m.SendWorkOrder(context.Background(), &models.WorkOrderDocument{}, writePDF(t))
			if !errors.Is(err, ErrNotConfigured) {
				t.Errorf("Expected ErrNotConfigured, got %v", err)
			}
			if len(*sent) != 0 {
				t.Error("Nothing should be sent")
			}
		})
	}
}

func TestSendTransportError(t *testing.T) {
	boom := errors.New("connection refused")
	m := NewSMTPMailer(configured(), nil).WithSendFunc(func(string, smtp.Auth, string, []string, []byte) error {
		return boom
	})
	err := m.SendWorkOrder(context.Background(), &models.WorkOrderDocument{}, writePDF(t))
	if !errors.Is(err, boom) {
		t.Errorf("Expected transport error, got %v", err)
	}
}
