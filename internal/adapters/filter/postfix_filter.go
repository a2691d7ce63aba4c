package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mailsift/phishscan/internal/config"
	"github.com/mailsift/phishscan/internal/core"
	"github.com/mailsift/phishscan/internal/utils"
)

// PostfixFilter implements a Postfix content filter: it accepts messages
// over SMTP, stamps phishing-analysis headers onto them and reinjects the
// result into Postfix.
type PostfixFilter struct {
	service        *core.AnalyzerService
	logger         *zap.Logger
	textProcessor  *utils.TextProcessor
	server         *smtp.Server
	listenAddr     string
	blockHighRisk  bool
	scoreHeader    string
	riskHeader     string
	reasonsHeader  string
	errorHeader    string
	postfixAddr    string
	postfixPort    int
	postfixEnabled bool
	subjectPrefix  string
	modifySubject  bool
	maxBodySize    int
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.AnalyzerService,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	serverCfg config.ServerConfig,
	postfixAddr string,
	postfixPort int,
	postfixEnabled bool,
) *PostfixFilter {
	subjectPrefix := serverCfg.SubjectPrefix
	if subjectPrefix == "" && serverCfg.ModifySubject {
		subjectPrefix = "[**PHISHING**] "
	}

	return &PostfixFilter{
		service:        service,
		logger:         logger,
		textProcessor:  textProcessor,
		listenAddr:     serverCfg.ListenAddress,
		blockHighRisk:  serverCfg.BlockHighRisk,
		scoreHeader:    serverCfg.ScoreHeader,
		riskHeader:     serverCfg.RiskHeader,
		reasonsHeader:  serverCfg.ReasonsHeader,
		errorHeader:    serverCfg.ErrorHeader,
		postfixAddr:    postfixAddr,
		postfixPort:    postfixPort,
		postfixEnabled: postfixEnabled,
		subjectPrefix:  subjectPrefix,
		modifySubject:  serverCfg.ModifySubject,
		maxBodySize:    serverCfg.MaxBodySize,
	}
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessMessage analyzes a materialized message and returns the result.
// This is mainly used for testing or direct API calls.
func (f *PostfixFilter) ProcessMessage(ctx context.Context, msg *core.RawMessage) (*core.AnalysisResult, error) {
	return f.service.AnalyzeMessage(ctx, msg), nil
}

// sendToPostfix sends the processed message back to Postfix on the configured port using go-smtp
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, messageData []byte) error {
	postfixAddr := fmt.Sprintf("%s:%d", f.postfixAddr, f.postfixPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(messageData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
		// Not returning an error here as the message has already been sent
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for our filter)
func (s *smtpSession) AuthPlain(_, _ string) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data handles the message data
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	// Parse headers separately so the original message can be reconstructed
	// with our analysis headers prepended.
	parsed, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse message", zap.Error(err))
		return err
	}

	msg, buildErr := BuildRawMessage(rawData)
	if buildErr == nil {
		msg.BodyText = s.filter.textProcessor.TruncateText(msg.BodyText, s.filter.maxBodySize)
		msg.BodyHTML = s.filter.textProcessor.TruncateText(msg.BodyHTML, s.filter.maxBodySize)
	}

	senderDomain := "unknown"
	if buildErr == nil {
		if parts := strings.Split(msg.From.EmailAddress, "@"); len(parts) == 2 {
			senderDomain = parts[1]
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// An analysis that cannot run is surfaced as a distinct error state,
	// never as a low score.
	var result *core.AnalysisResult
	if buildErr == nil {
		result = s.filter.service.AnalyzeMessage(ctx, msg)
	} else {
		s.filter.logger.Error("Failed to materialize message for analysis",
			zap.Error(buildErr),
			zap.String("sender", s.sender))
	}

	if result != nil && result.RiskClass == core.RiskHigh && s.filter.blockHighRisk {
		s.filter.logger.Info("Rejecting high-risk message",
			zap.String("from", msg.From.EmailAddress),
			zap.String("sender_domain", senderDomain),
			zap.Int("probability", result.Probability))
		return fmt.Errorf("550 Rejected as likely phishing (probability: %d)", result.Probability)
	}

	// Prepend the analysis headers to the original message.
	var modified bytes.Buffer
	if result != nil {
		fmt.Fprintf(&modified, "%s: %d\r\n", s.filter.scoreHeader, result.Probability)
		fmt.Fprintf(&modified, "%s: %s\r\n", s.filter.riskHeader, result.RiskClass)
		fmt.Fprintf(&modified, "%s: %s\r\n", s.filter.reasonsHeader, strings.Join(result.Reasons, "; "))
	} else {
		fmt.Fprintf(&modified, "%s: %s\r\n", s.filter.errorHeader, buildErr.Error())
	}

	highRisk := result != nil && result.RiskClass == core.RiskHigh
	if highRisk && s.filter.modifySubject && s.filter.subjectPrefix != "" {
		s.writeHeadersWithSubjectPrefix(&modified, parsed)
	} else {
		writeHeaders(&modified, parsed, "")
	}

	// End of headers
	fmt.Fprintf(&modified, "\r\n")

	// Write the original body, preserving all MIME parts and attachments.
	bodyStart := bytes.Index(rawData, []byte("\r\n\r\n"))
	if bodyStart != -1 {
		modified.Write(rawData[bodyStart+4:])
	} else if bodyStart = bytes.Index(rawData, []byte("\n\n")); bodyStart != -1 {
		modified.Write(rawData[bodyStart+2:])
	} else if body, err := io.ReadAll(parsed.Body); err == nil {
		modified.Write(body)
	}

	if s.filter.postfixEnabled {
		if err := s.filter.sendToPostfix(s.sender, s.recipients, modified.Bytes()); err != nil {
			s.filter.logger.Error("Failed to send message back to Postfix",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
	}

	if result != nil {
		s.filter.logger.Info("Processed message",
			zap.String("sender_domain", senderDomain),
			zap.Int("probability", result.Probability),
			zap.String("risk", string(result.RiskClass)))
	}

	return nil
}

// writeHeadersWithSubjectPrefix rewrites the Subject with the configured
// prefix and copies all other headers unchanged.
func (s *smtpSession) writeHeadersWithSubjectPrefix(w *bytes.Buffer, parsed *mail.Message) {
	originalSubject := parsed.Header.Get("Subject")

	decodedSubject, err := decodeEncodedHeader(originalSubject)
	if err != nil {
		decodedSubject = originalSubject
	}

	if !strings.HasPrefix(decodedSubject, s.filter.subjectPrefix) {
		fmt.Fprintf(w, "Subject: %s%s\r\n", s.filter.subjectPrefix, decodedSubject)
		writeHeaders(w, parsed, "Subject")
		return
	}
	writeHeaders(w, parsed, "")
}

// writeHeaders copies all headers from the parsed message, skipping the
// named header when skip is non-empty.
func writeHeaders(w *bytes.Buffer, parsed *mail.Message, skip string) {
	for key, values := range parsed.Header {
		if skip != "" && strings.EqualFold(key, skip) {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(w, "%s: %s\r\n", key, value)
		}
	}
}

// Logout handles SMTP logout (not needed for our filter)
func (s *smtpSession) Logout() error {
	return nil
}
