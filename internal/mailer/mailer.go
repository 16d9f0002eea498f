package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/models"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/renderer"
	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/timeutil"
)

var ErrNotConfigured = errors.New("SMTP_USER, SMTP_PASSWORD ve EMAIL_TO environment variable'ları tanımlı olmalı")

// SendFunc delivers a message. smtp.SendMail upgrades to STARTTLS when the
// server offers it.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Config struct {
	Server   string
	Port     int
	User     string
	Password string
	From     string
	To       []string
}

// SMTPMailer sends rendered PDFs to the configured recipients.
type SMTPMailer struct {
	cfg    Config
	send   SendFunc
	now    func() time.Time
	logger *zap.Logger
}

func NewSMTPMailer(cfg Config, logger *zap.Logger) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, now: time.Now, logger: logger}
}

// WithSendFunc replaces the transport. Used by tests.
func (m *SMTPMailer) WithSendFunc(fn SendFunc) *SMTPMailer {
	m.send = fn
	return m
}

func (m *SMTPMailer) Configured() bool {
	return m.cfg.User != "" && m.cfg.Password != "" && len(m.cfg.To) > 0
}

// WorkOrderSubject is "Servis İş Emri - {plate or N/A} - {title}".
func WorkOrderSubject(order *models.WorkOrderInput) string {
	plate := strings.TrimSpace(order.Plate)
	if plate == "" {
		plate = "N/A"
	}
	return fmt.Sprintf("Servis İş Emri - %s - %s", plate, strings.TrimSpace(order.CustomerTitle))
}

func (m *SMTPMailer) SendWorkOrder(ctx context.Context, doc *models.WorkOrderDocument, pdfPath string) error {
	body := fmt.Sprintf("%s tarihine ait iş emri PDF olarak ekte gönderilmiştir.",
		timeutil.FormatLocal(m.now(), timeutil.DisplayDate))
	if err := m.sendPDF(ctx, WorkOrderSubject(&doc.Order), body, pdfPath); err != nil {
		return fmt.Errorf("E-posta gönderme hatası: %w", err)
	}
	m.logger.Info("work order mailed",
		zap.Int("order_no", doc.Order.OrderNo), zap.Strings("to", m.cfg.To))
	return nil
}

func (m *SMTPMailer) SendMonthlyReport(ctx context.Context, report *models.MonthlyReport, pdfPath string) error {
	title := renderer.ReportTitle(report.Month, report.Year)
	body := fmt.Sprintf("%s %d dönemine ait aylık iş evrakı raporu PDF olarak ekte gönderilmiştir.",
		timeutil.MonthName(time.Month(report.Month)), report.Year)
	if err := m.sendPDF(ctx, title, body, pdfPath); err != nil {
		return fmt.Errorf("E-posta gönderme hatası: %w", err)
	}
	m.logger.Info("monthly report mailed",
		zap.Int("month", report.Month), zap.Int("year", report.Year), zap.Strings("to", m.cfg.To))
	return nil
}

func (m *SMTPMailer) sendPDF(ctx context.Context, subject, body, pdfPath string) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	attachment, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to read attachment: %w", err)
	}
	msg, err := buildMessage(m.cfg.From, m.cfg.To, subject, body, filepath.Base(pdfPath), attachment)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Server, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Server)
	return m.send(addr, auth, m.cfg.From, m.cfg.To, msg)
}

// buildMessage assembles a multipart/mixed message with a plain text part
// and a base64 PDF attachment.
func buildMessage(from string, to []string, subject, body, filename string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	text.Write([]byte(body))

	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {mime.FormatMediaType("application/pdf", map[string]string{"name": filename})},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": filename})},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		part.Write([]byte(encoded[:76] + "\r\n"))
		encoded = encoded[76:]
	}
	part.Write([]byte(encoded + "\r\n"))

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
