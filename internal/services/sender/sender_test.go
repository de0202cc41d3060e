package sender

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/lib/smtp"
	"github.com/magabrotheeeer/yamdb/internal/models"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) From() string {
	return m.Called().String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error { return m.Called(from).Error(0) }
func (m *MockSMTPClient) Rcpt(to string) error   { return m.Called(to).Error(0) }
func (m *MockSMTPClient) Quit() error            { return m.Called().Error(0) }
func (m *MockSMTPClient) Close() error           { return m.Called().Error(0) }

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

type bufferWriter struct {
	bytes.Buffer
	closed bool
}

func (w *bufferWriter) Close() error {
	w.closed = true
	return nil
}

var confirmation = models.ConfirmationMessage{Username: "alice", Email: "alice@example.com", Code: "code-123"}

func TestService_SendConfirmationCode(t *testing.T) {
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	writer := &bufferWriter{}

	transport.On("From").Return("robot@yamdb.test")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", "robot@yamdb.test").Return(nil).Once()
	client.On("Rcpt", "alice@example.com").Return(nil).Once()
	client.On("Data").Return(writer, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()

	err := New(sl.Discard(), transport).SendConfirmationCode(context.Background(), confirmation)
	require.NoError(t, err)

	assert.True(t, writer.closed)
	body := writer.String()
	assert.Contains(t, body, "To: alice@example.com")
	assert.Contains(t, body, "From: robot@yamdb.test")
	assert.Contains(t, body, "code-123")
	transport.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestService_SendConfirmationCode_Errors(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*MockTransport, *MockSMTPClient)
	}{
		{
			name: "connect error",
			setupMocks: func(tr *MockTransport, _ *MockSMTPClient) {
				tr.On("Connect").Return(nil, errors.New("connection refused")).Once()
			},
		},
		{
			name: "rcpt rejected",
			setupMocks: func(tr *MockTransport, c *MockSMTPClient) {
				tr.On("Connect").Return(c, nil).Once()
				c.On("Mail", "robot@yamdb.test").Return(nil).Once()
				c.On("Rcpt", "alice@example.com").Return(errors.New("550 no such user")).Once()
				c.On("Close").Return(nil).Once()
			},
		},
		{
			name: "data error",
			setupMocks: func(tr *MockTransport, c *MockSMTPClient) {
				tr.On("Connect").Return(c, nil).Once()
				c.On("Mail", "robot@yamdb.test").Return(nil).Once()
				c.On("Rcpt", "alice@example.com").Return(nil).Once()
				c.On("Data").Return(nil, errors.New("451 try later")).Once()
				c.On("Close").Return(nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			client := new(MockSMTPClient)
			transport.On("From").Return("robot@yamdb.test")
			tt.setupMocks(transport, client)

			err := New(sl.Discard(), transport).SendConfirmationCode(context.Background(), confirmation)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "sender.SendConfirmationCode")

			transport.AssertExpectations(t)
			client.AssertExpectations(t)
		})
	}
}

func TestService_HandleConfirmation_BadMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid JSON", body: `invalid json`},
		{name: "no email", body: `{"username":"alice","code":"x"}`},
		{name: "no code", body: `{"username":"alice","email":"alice@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			err := New(sl.Discard(), transport).HandleConfirmation(context.Background(), []byte(tt.body))
			assert.ErrorIs(t, err, ErrBadMessage)
			transport.AssertNotCalled(t, "Connect")
		})
	}
}

func TestService_HandleConfirmation(t *testing.T) {
	transport := new(MockTransport)
	transport.On("From").Return("robot@yamdb.test")
	transport.On("Connect").Return(nil, errors.New("down")).Once()

	err := New(sl.Discard(), transport).HandleConfirmation(context.Background(),
		[]byte(`{"username":"alice","email":"alice@example.com","code":"c"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadMessage)
	transport.AssertExpectations(t)
}
