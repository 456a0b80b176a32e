// internal/workers/communication/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"gradeup-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		EmailEnabled:     true,
		SMSEnabled:       true,
		FromEmail:        "noreply@gradeup.app",
		AWSRegion:        "us-east-1",
		TemplateRegistry: "test-registry",
		Timeout:          30 * time.Second,
	}
}

func createTestInput(notificationType string) *Input {
	return &Input{
		RecipientID:      "athlete-001",
		RecipientType:    RecipientAthlete,
		NotificationType: notificationType,
		DealID:           "deal-001",
		Priority:         "high",
		Metadata: map[string]interface{}{
			"brandName": "Campus Coffee Co",
			"dealType":  "social_post",
			"amount":    250,
		},
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

func newTestHandler(t *testing.T, db *sql.DB, config *Config, ses SESService, sns SNSService) *Handler {
	return &Handler{
		config:      config,
		db:          db,
		logger:      newTestLogger(t),
		sesClient:   ses,
		snsClient:   sns,
		templateMap: loadTestTemplates(),
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	tests := []struct {
		name           string
		input          *Input
		emailEnabled   bool
		smsEnabled     bool
		priority       string
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:         "email and SMS success",
			input:        createTestInput(TypeDealReceived),
			emailEnabled: true,
			smsEnabled:   true,
			priority:     "high",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, StatusSent, output.Status)
				assert.NotEmpty(t, output.NotificationID)
				assert.NotEmpty(t, output.SentAt)
			},
		},
		{
			name:         "email only success",
			input:        createTestInput(TypeDealAccepted),
			emailEnabled: true,
			smsEnabled:   false,
			priority:     "medium",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, StatusSent, output.Status)
			},
		},
		{
			name:         "SMS only for high priority",
			input:        createTestInput(TypeDealReceived),
			emailEnabled: false,
			smsEnabled:   true,
			priority:     "high",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, StatusSent, output.Status)
			},
		},
		{
			name:         "no SMS for medium priority",
			input:        createTestInput(TypeDealAccepted),
			emailEnabled: false,
			smsEnabled:   true,
			priority:     "medium",
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, StatusDisabled, output.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			mock.ExpectQuery(`SELECT email, phone FROM athletes WHERE id = \$1`).
				WithArgs("athlete-001").
				WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
					AddRow("athlete@university.edu", "+1234567890"))

			mockSES := &MockSESService{
				SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
					assert.Equal(t, "athlete@university.edu", params.Destination.ToAddresses[0])
					assert.Equal(t, "noreply@gradeup.app", *params.Source)
					return &ses.SendEmailOutput{}, nil
				},
			}

			mockSNS := &MockSNSService{
				PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
					if tt.priority == "high" && tt.smsEnabled {
						assert.Equal(t, "+1234567890", *params.PhoneNumber)
					}
					return &sns.PublishOutput{}, nil
				},
			}

			config := createTestConfig()
			config.EmailEnabled = tt.emailEnabled
			config.SMSEnabled = tt.smsEnabled

			handler := newTestHandler(t, db, config, mockSES, mockSNS)

			tt.input.Priority = tt.priority
			output, err := handler.Execute(context.Background(), tt.input)

			assert.NoError(t, err)
			assert.NotNil(t, output)

			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_RecipientNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM athletes WHERE id = \$1`).
		WithArgs("athlete-001").
		WillReturnError(sql.ErrNoRows)

	handler := newTestHandler(t, db, createTestConfig(), &MockSESService{}, &MockSNSService{})

	input := createTestInput(TypeDealReceived)
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.NotEmpty(t, output.NotificationID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_EmailFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM athletes WHERE id = \$1`).
		WithArgs("athlete-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("athlete@university.edu", "+1234567890"))

	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("SES service unavailable")
		},
	}

	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return &sns.PublishOutput{}, nil
		},
	}

	handler := newTestHandler(t, db, createTestConfig(), mockSES, mockSNS)

	input := createTestInput(TypeDealReceived)
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, StatusFailed, output.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SMSFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM athletes WHERE id = \$1`).
		WithArgs("athlete-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("athlete@university.edu", "+1234567890"))

	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return &ses.SendEmailOutput{}, nil
		},
	}

	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("SNS service unavailable")
		},
	}

	handler := newTestHandler(t, db, createTestConfig(), mockSES, mockSNS)

	input := createTestInput(TypeDealReceived)
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, StatusFailed, output.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_TemplateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM athletes WHERE id = \$1`).
		WithArgs("athlete-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("athlete@university.edu", "+1234567890"))

	handler := newTestHandler(t, db, createTestConfig(), &MockSESService{}, &MockSNSService{})

	input := createTestInput("unknown_template_type")
	output, err := handler.Execute(context.Background(), input)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "template not found")
	assert.Nil(t, output)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Unit Tests
// ==========================

func TestHandler_GetRecipientContact(t *testing.T) {
	tests := []struct {
		name          string
		recipientType string
		query         string
		expectedEmail string
		expectedPhone string
		expectError   bool
		errorContains string
	}{
		{
			name:          "athlete recipient",
			recipientType: RecipientAthlete,
			query:         `SELECT email, phone FROM athletes WHERE id = \$1`,
			expectedEmail: "athlete@university.edu",
			expectedPhone: "+1234567890",
		},
		{
			name:          "brand recipient",
			recipientType: RecipientBrand,
			query:         `SELECT email, phone FROM brands WHERE id = \$1`,
			expectedEmail: "partnerships@campuscoffee.com",
			expectedPhone: "+1987654321",
		},
		{
			name:          "director recipient",
			recipientType: RecipientDirector,
			query:         `SELECT email, phone FROM directors WHERE id = \$1`,
			expectedEmail: "nil.office@stateuniversity.edu",
			expectedPhone: "+1555123456",
		},
		{
			name:          "invalid recipient type",
			recipientType: "invalid",
			expectError:   true,
			errorContains: "invalid recipient type",
		},
		{
			name:          "recipient not found",
			recipientType: RecipientAthlete,
			query:         `SELECT email, phone FROM athletes WHERE id = \$1`,
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			handler := &Handler{db: db, logger: newTestLogger(t)}

			if !tt.expectError || tt.recipientType == "invalid" {
				if tt.recipientType != "invalid" {
					mock.ExpectQuery(tt.query).
						WithArgs("recipient-001").
						WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
							AddRow(tt.expectedEmail, tt.expectedPhone))
				}
			} else {
				mock.ExpectQuery(tt.query).
					WithArgs("recipient-001").
					WillReturnError(sql.ErrNoRows)
			}

			email, phone, err := handler.getRecipientContact("recipient-001", tt.recipientType)

			if tt.expectError {
				assert.Error(t, err)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEmail, email)
				assert.Equal(t, tt.expectedPhone, phone)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_RenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "simple replacement",
			template: "Hello {{name}}, your deal {{dealId}} is ready.",
			data: map[string]interface{}{
				"name":   "Jordan",
				"dealId": "DEAL-123",
			},
			expected: "Hello Jordan, your deal DEAL-123 is ready.",
		},
		{
			name:     "multiple replacements",
			template: "Offer {{dealId}} from {{brandName}} has priority {{priority}}.",
			data: map[string]interface{}{
				"dealId":    "DEAL-001",
				"brandName": "Campus Coffee Co",
				"priority":  "high",
			},
			expected: "Offer DEAL-001 from Campus Coffee Co has priority high.",
		},
		{
			name:     "integer value",
			template: "The offer is worth ${{amount}}.",
			data: map[string]interface{}{
				"amount": 250,
			},
			expected: "The offer is worth $250.",
		},
		{
			name:     "no replacements",
			template: "Static message without placeholders.",
			data:     map[string]interface{}{},
			expected: "Static message without placeholders.",
		},
		{
			name:     "missing placeholder",
			template: "Hello {{name}}, your {{missing}} is here.",
			data: map[string]interface{}{
				"name": "Jordan",
			},
			expected: "Hello Jordan, your  is here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := renderTemplate(tt.template, tt.data)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHandler_LoadTemplates(t *testing.T) {
	templates, err := loadTemplates("test-registry")

	assert.NoError(t, err)
	assert.NotNil(t, templates)

	received, exists := templates[TypeDealReceived]
	assert.True(t, exists)
	assert.Equal(t, "New NIL Deal Offer", received["subject"])
	assert.Contains(t, received["body"], "{{brandName}}")

	accepted, exists := templates[TypeDealAccepted]
	assert.True(t, exists)
	assert.Equal(t, "Deal Offer Accepted", accepted["subject"])
	assert.Contains(t, accepted["body"], "accepted")
}

// ==========================
// Edge Cases
// ==========================

func TestHandler_EdgeCases(t *testing.T) {
	t.Run("empty recipient ID", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT email, phone FROM athletes WHERE id = \$1`).
			WithArgs("").
			WillReturnError(sql.ErrNoRows)

		handler := newTestHandler(t, db, createTestConfig(), &MockSESService{}, &MockSNSService{})

		input := &Input{
			RecipientID:      "",
			RecipientType:    RecipientAthlete,
			NotificationType: TypeDealReceived,
		}

		output, err := handler.Execute(context.Background(), input)

		assert.NoError(t, err)
		assert.NotNil(t, output)
		assert.Equal(t, StatusDisabled, output.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty metadata", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT email, phone FROM athletes WHERE id = \$1`).
			WithArgs("athlete-001").
			WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
				AddRow("athlete@university.edu", "+1234567890"))

		mockSES := &MockSESService{
			SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
				return &ses.SendEmailOutput{}, nil
			},
		}

		mockSNS := &MockSNSService{
			PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
				return &sns.PublishOutput{}, nil
			},
		}

		handler := newTestHandler(t, db, createTestConfig(), mockSES, mockSNS)

		input := &Input{
			RecipientID:      "athlete-001",
			RecipientType:    RecipientAthlete,
			NotificationType: TypeDealReceived,
			DealID:           "deal-001",
			Priority:         "high",
			Metadata:         nil,
		}

		output, err := handler.Execute(context.Background(), input)

		assert.NoError(t, err)
		assert.NotNil(t, output)
		assert.Equal(t, StatusSent, output.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error degrades to disabled", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT email, phone FROM athletes WHERE id = \$1`).
			WithArgs("athlete-001").
			WillReturnError(context.DeadlineExceeded)

		handler := newTestHandler(t, db, createTestConfig(), &MockSESService{}, &MockSNSService{})

		input := createTestInput(TypeDealReceived)
		output, err := handler.Execute(context.Background(), input)

		assert.NoError(t, err)
		assert.NotNil(t, output)
		assert.Equal(t, StatusDisabled, output.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// ==========================
// Integration Test
// ==========================

func TestHandler_FullWorkflow(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM brands WHERE id = \$1`).
		WithArgs("brand-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).
			AddRow("partnerships@campuscoffee.com", "+15551234567"))

	emailSent := false
	mockSES := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			emailSent = true
			assert.Equal(t, "partnerships@campuscoffee.com", params.Destination.ToAddresses[0])
			assert.Equal(t, "noreply@gradeup.app", *params.Source)
			assert.Contains(t, *params.Message.Subject.Data, "Deal Offer Accepted")
			assert.Contains(t, *params.Message.Body.Text.Data, "DEAL-FULL-001")
			return &ses.SendEmailOutput{}, nil
		},
	}

	smsSent := false
	mockSNS := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			smsSent = true
			assert.Equal(t, "+15551234567", *params.PhoneNumber)
			assert.Contains(t, *params.Message, "DEAL-FULL-001")
			return &sns.PublishOutput{}, nil
		},
	}

	handler := newTestHandler(t, db, createTestConfig(), mockSES, mockSNS)

	input := &Input{
		RecipientID:      "brand-001",
		RecipientType:    RecipientBrand,
		NotificationType: TypeDealAccepted,
		DealID:           "DEAL-FULL-001",
		Priority:         "high",
		Metadata: map[string]interface{}{
			"athleteName": "Jordan Reyes",
			"dealType":    "social_post",
			"amount":      250,
		},
	}

	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, StatusSent, output.Status)
	assert.NotEmpty(t, output.NotificationID)
	assert.NotEmpty(t, output.SentAt)

	assert.True(t, emailSent)
	assert.True(t, smsSent)

	_, err = time.Parse(time.RFC3339, output.SentAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Helper function for test templates
func loadTestTemplates() map[string]map[string]interface{} {
	templates, _ := loadTemplates("test-registry")
	return templates
}
