// file: controllers/mocks_test.go
package controllers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"conference-desk/models"
	"conference-desk/services"
)

// MockSlotService implements services.SlotServiceInterface.
type MockSlotService struct {
	mock.Mock
}

func (m *MockSlotService) Stats(ctx context.Context) (services.SlotStats, error) {
	args := m.Called()
	return args.Get(0).(services.SlotStats), args.Error(1)
}

func (m *MockSlotService) TrackStatus(ctx context.Context, t models.Track) (services.TrackSlot, error) {
	args := m.Called(t)
	return args.Get(0).(services.TrackSlot), args.Error(1)
}

func (m *MockSlotService) IsOpen(ctx context.Context, t models.Track) (bool, error) {
	args := m.Called(t)
	return args.Bool(0), args.Error(1)
}

// MockRegistrationService implements services.RegistrationServiceInterface.
type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Submit(ctx context.Context, req services.SubmitRequest) (*services.RegistrationDetail, error) {
	args := m.Called(req)
	detail, _ := args.Get(0).(*services.RegistrationDetail)
	return detail, args.Error(1)
}

func (m *MockRegistrationService) Get(ctx context.Context, id string) (*services.RegistrationDetail, error) {
	args := m.Called(id)
	detail, _ := args.Get(0).(*services.RegistrationDetail)
	return detail, args.Error(1)
}

func (m *MockRegistrationService) List(ctx context.Context, status string) ([]models.Registration, error) {
	args := m.Called(status)
	regs, _ := args.Get(0).([]models.Registration)
	return regs, args.Error(1)
}

func (m *MockRegistrationService) AdvanceStatus(ctx context.Context, id, status string) (*models.Registration, error) {
	args := m.Called(id, status)
	reg, _ := args.Get(0).(*models.Registration)
	return reg, args.Error(1)
}

// MockQRService implements services.QRServiceInterface.
type MockQRService struct {
	mock.Mock
}

func (m *MockQRService) Generate(ctx context.Context, p *models.Participant) (*services.QRBadge, error) {
	args := m.Called(p)
	badge, _ := args.Get(0).(*services.QRBadge)
	return badge, args.Error(1)
}

func (m *MockQRService) Resolve(text string) (*services.QRPayload, error) {
	args := m.Called(text)
	payload, _ := args.Get(0).(*services.QRPayload)
	return payload, args.Error(1)
}

func (m *MockQRService) Verify(ctx context.Context, text string) (*services.QRPayload, error) {
	args := m.Called(text)
	payload, _ := args.Get(0).(*services.QRPayload)
	return payload, args.Error(1)
}

func (m *MockQRService) Image(ctx context.Context, participantID string) ([]byte, error) {
	args := m.Called(participantID)
	png, _ := args.Get(0).([]byte)
	return png, args.Error(1)
}

func (m *MockQRService) Regenerate(ctx context.Context, participantID string) (*services.QRBadge, error) {
	args := m.Called(participantID)
	badge, _ := args.Get(0).(*services.QRBadge)
	return badge, args.Error(1)
}

// MockCheckinService implements services.CheckinServiceInterface.
type MockCheckinService struct {
	mock.Mock
}

func (m *MockCheckinService) AuthorizeAction(ctx context.Context, req services.ActionRequest) (*services.ActionResult, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*services.ActionResult)
	return res, args.Error(1)
}

func (m *MockCheckinService) AttendanceSummary(ctx context.Context, date string) (*services.AttendanceReport, error) {
	args := m.Called(date)
	report, _ := args.Get(0).(*services.AttendanceReport)
	return report, args.Error(1)
}

// MockNotifier implements Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SlotsChanged() { m.Called() }

func (m *MockNotifier) ActionRecorded(res *services.ActionResult) { m.Called(res) }
