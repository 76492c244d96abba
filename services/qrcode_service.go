// services/qrcode_service.go
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"conference-desk/logger"
	"conference-desk/models"
	"conference-desk/store"
)

const pngDataURLPrefix = "data:image/png;base64,"

// QRPayload is the identity carried by a badge.
type QRPayload struct {
	ParticipantID string      `json:"participant_id"`
	Name          string      `json:"name"`
	Role          models.Role `json:"role"`
	CreatedAt     time.Time   `json:"created_at"`
}

type qrClaims struct {
	QRPayload
	jwt.RegisteredClaims
}

// QRBadge is a freshly generated badge.
type QRBadge struct {
	Payload QRPayload
	Text    string // signed text encoded in the QR image
	PNG     []byte
}

// qrEncoder matches qrcode.Encode so tests can swap it out.
type qrEncoder func(content string, level qrcode.RecoveryLevel, size int) ([]byte, error)

type QRServiceInterface interface {
	Generate(ctx context.Context, p *models.Participant) (*QRBadge, error)
	Resolve(text string) (*QRPayload, error)
	Verify(ctx context.Context, text string) (*QRPayload, error)
	Image(ctx context.Context, participantID string) ([]byte, error)
	Regenerate(ctx context.Context, participantID string) (*QRBadge, error)
}

// QRService signs badge payloads and renders them as PNG.
type QRService struct {
	repo   store.Repository
	secret []byte
	size   int
	encode qrEncoder
	now    func() time.Time
}

// ensure QRService implements QRServiceInterface
var _ QRServiceInterface = (*QRService)(nil)

// NewQRService creates a QRService that signs with secret and renders size x size images.
func NewQRService(repo store.Repository, secret string, size int) *QRService {
	return &QRService{
		repo:   repo,
		secret: []byte(secret),
		size:   size,
		encode: qrcode.Encode,
		now:    time.Now,
	}
}

// RenderQRCode encodes content as a square PNG of the given size.
func RenderQRCode(content string, size int, encode qrEncoder) ([]byte, error) {
	if size <= 0 {
		return nil, errors.New("invalid dimensions: size must be positive")
	}
	png, err := encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}

// Generate signs a payload for p, renders it and stores both on the participant.
func (s *QRService) Generate(ctx context.Context, p *models.Participant) (*QRBadge, error) {
	if p == nil || p.ID.IsZero() {
		return nil, invalid("participant_id", "participant has no id")
	}
	role := p.Role
	if role == "" {
		role = models.RoleParticipant
	}
	now := s.now().UTC()
	payload := QRPayload{
		ParticipantID: p.ID.Hex(),
		Name:          p.Name,
		Role:          role,
		CreatedAt:     now,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, qrClaims{
		QRPayload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  payload.ParticipantID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	})
	text, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign qr payload: %w", err)
	}

	png, err := RenderQRCode(text, s.size, s.encode)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	image := pngDataURLPrefix + base64.StdEncoding.EncodeToString(png)

	if err := s.repo.SaveParticipantQR(ctx, p.ID, text, image); err != nil {
		return nil, notFound(err, "participant", payload.ParticipantID)
	}
	p.QRPayload = text
	p.QRImage = image

	logger.Info().Str("participant_id", payload.ParticipantID).Msg("Generate: QR badge stored")
	return &QRBadge{Payload: payload, Text: text, PNG: png}, nil
}

// Resolve recovers the identity from scanned text. It never authorizes anything.
func (s *QRService) Resolve(text string) (*QRPayload, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidQR)
	}

	claims := &qrClaims{}
	_, err := jwt.ParseWithClaims(text, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		logger.Warn().Err(err).Msg("Resolve: rejected scanned payload")
		return nil, fmt.Errorf("%w: %v", ErrInvalidQR, err)
	}

	if _, err := primitive.ObjectIDFromHex(claims.ParticipantID); err != nil {
		return nil, fmt.Errorf("%w: bad participant id", ErrInvalidQR)
	}
	if _, err := models.ParseRole(string(claims.Role)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQR, err)
	}
	payload := claims.QRPayload
	return &payload, nil
}

// Verify resolves scanned text and checks it is the participant's current
// badge. A badge replaced by Regenerate still carries a valid signature, so
// the stored payload is the only thing that revokes it.
func (s *QRService) Verify(ctx context.Context, text string) (*QRPayload, error) {
	payload, err := s.Resolve(text)
	if err != nil {
		return nil, err
	}
	id, _ := primitive.ObjectIDFromHex(payload.ParticipantID)
	p, err := s.repo.GetParticipant(ctx, id)
	if err != nil {
		return nil, notFound(err, "participant", payload.ParticipantID)
	}
	if p.QRPayload != strings.TrimSpace(text) {
		logger.Warn().Str("participant_id", payload.ParticipantID).Msg("Verify: superseded badge scanned")
		return nil, precondition(RuleBadgeSuperseded, map[string]string{"participant_id": payload.ParticipantID},
			"this badge was replaced; scan the participant's latest badge")
	}
	return payload, nil
}

// Image returns the stored badge PNG, generating one first if the participant has none.
func (s *QRService) Image(ctx context.Context, participantID string) ([]byte, error) {
	id, err := primitive.ObjectIDFromHex(participantID)
	if err != nil {
		return nil, invalid("participant_id", "%q is not a valid id", participantID)
	}
	p, err := s.repo.GetParticipant(ctx, id)
	if err != nil {
		return nil, notFound(err, "participant", participantID)
	}
	if p.QRImage == "" {
		badge, err := s.Generate(ctx, p)
		if err != nil {
			return nil, err
		}
		return badge.PNG, nil
	}
	png, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(p.QRImage, pngDataURLPrefix))
	if err != nil {
		return nil, fmt.Errorf("decode stored qr image: %w", err)
	}
	return png, nil
}

// Regenerate issues a fresh badge for a stored participant, replacing the old one.
func (s *QRService) Regenerate(ctx context.Context, participantID string) (*QRBadge, error) {
	id, err := primitive.ObjectIDFromHex(participantID)
	if err != nil {
		return nil, invalid("participant_id", "%q is not a valid id", participantID)
	}
	p, err := s.repo.GetParticipant(ctx, id)
	if err != nil {
		return nil, notFound(err, "participant", participantID)
	}
	return s.Generate(ctx, p)
}
