package mocks

import "github.com/stretchr/testify/mock"

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendVerification(to, name, verifyURL string) error {
	args := m.Called(to, name, verifyURL)
	return args.Error(0)
}

func (m *MockMailer) SendPasswordReset(to, name, resetURL string) error {
	args := m.Called(to, name, resetURL)
	return args.Error(0)
}
