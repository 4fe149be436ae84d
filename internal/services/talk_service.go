package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"simbi_backend/internal/logger"
	"simbi_backend/internal/models"
	"simbi_backend/internal/repositories"
	"simbi_backend/internal/services/dto"
	"simbi_backend/pkg/apperrors"
)

// Realtime event names.
const (
	EventMessage       = "message"
	EventNewMessage    = "new-message"
	EventOfferCreated  = "offer-created"
	EventNewOffer      = "new-offer"
	EventOfferUpdate   = "offer-update"
	EventOfferAccepted = "offer-accepted"
	EventRead          = "read"
	EventNotification  = "notification"
)

type TalkService interface {
	CreateTalk(db *gorm.DB, userID string, req *dto.CreateTalkRequest) (*dto.TalkResponse, error)
	GetTalks(db *gorm.DB, userID string) ([]*dto.TalkResponse, error)
	GetTalk(db *gorm.DB, userID, talkID string) (*dto.TalkResponse, error)
	SendMessage(db *gorm.DB, userID, talkID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	CreateOffer(db *gorm.DB, userID, talkID string, req *dto.CreateOfferRequest) (*dto.OfferResponse, error)
	AcceptOffer(db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error)
	DeclineOffer(db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error)
	ArchiveTalk(db *gorm.DB, userID, talkID string) error

	// Used by the WebSocket gateway.
	CheckParticipant(db *gorm.DB, userID, talkID string) (*models.Talk, error)
	FindOfferInTalk(db *gorm.DB, userID, talkID, offerID string) (*models.Offer, error)
	MarkRead(db *gorm.DB, userID, talkID string) (time.Time, error)
}

type TalkServiceImpl struct {
	talkRepo            repositories.TalkRepository
	userRepo            repositories.UserRepository
	serviceRepo         repositories.ServiceRepository
	notificationService NotificationService
	realtime            RealtimePublisher
	now                 func() time.Time
}

func NewTalkService(
	talkRepo repositories.TalkRepository,
	userRepo repositories.UserRepository,
	serviceRepo repositories.ServiceRepository,
	notificationService NotificationService,
	realtime RealtimePublisher,
) TalkService {
	if realtime == nil {
		realtime = NopPublisher{}
	}
	return &TalkServiceImpl{
		talkRepo:            talkRepo,
		userRepo:            userRepo,
		serviceRepo:         serviceRepo,
		notificationService: notificationService,
		realtime:            realtime,
		now:                 func() time.Time { return time.Now().UTC() },
	}
}

func (s *TalkServiceImpl) CreateTalk(db *gorm.DB, userID string, req *dto.CreateTalkRequest) (*dto.TalkResponse, error) {
	if req.ReceiverID == userID {
		return nil, apperrors.ErrCannotTalkToSelf
	}

	sender, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if _, err := s.userRepo.FindByID(db, req.ReceiverID); err != nil {
		return nil, mapRepoError(err)
	}
	if req.ServiceID != nil && *req.ServiceID != "" {
		if _, err := s.serviceRepo.FindByID(db, *req.ServiceID); err != nil {
			return nil, mapRepoError(err)
		}
	} else {
		req.ServiceID = nil
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	now := s.now()
	talk := &models.Talk{
		SenderID:     userID,
		ReceiverID:   req.ReceiverID,
		ServiceID:    req.ServiceID,
		Subject:      strings.TrimSpace(req.Subject),
		Status:       models.TalkStatusActive,
		SenderRead:   true,
		ReceiverRead: false,
	}

	initial := strings.TrimSpace(req.InitialMessage)
	if initial != "" {
		talk.LastMessageAt = &now
	}
	if err := s.talkRepo.Create(tx, talk); err != nil {
		return nil, apperrors.InternalError(err)
	}

	var first *models.TalkMessage
	if initial != "" {
		first = &models.TalkMessage{TalkID: talk.ID, SenderID: userID, Content: initial}
		if err := s.talkRepo.CreateMessage(tx, first); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	created, err := s.talkRepo.FindByID(db, talk.ID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	content := "started a conversation with you"
	if first != nil {
		content = first.Content
	}
	s.notify(db, dto.CreateNotificationInput{
		UserID:    req.ReceiverID,
		Type:      models.NotificationNewMessage,
		Title:     "New message from " + sender.DisplayName(),
		Content:   content,
		Data:      map[string]interface{}{"talkId": talk.ID, "senderId": userID},
		ActionURL: "/talks/" + talk.ID,
	})

	resp := s.talkResponse(created, userID)
	if first != nil {
		first.Sender = sender
		resp.LastMessage = dto.NewMessageResponse(first)
	}
	return resp, nil
}

func (s *TalkServiceImpl) GetTalks(db *gorm.DB, userID string) ([]*dto.TalkResponse, error) {
	talks, err := s.talkRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	out := make([]*dto.TalkResponse, 0, len(talks))
	for i := range talks {
		resp := s.talkResponse(&talks[i], userID)
		last, err := s.talkRepo.FindLastMessage(db, talks[i].ID)
		if err == nil {
			resp.LastMessage = dto.NewMessageResponse(last)
		} else if !apperrors.Is(err, repositories.ErrTalkNotFound) {
			return nil, apperrors.InternalError(err)
		}
		out = append(out, resp)
	}
	return out, nil
}

// GetTalk marks the talk read for the caller.
func (s *TalkServiceImpl) GetTalk(db *gorm.DB, userID, talkID string) (*dto.TalkResponse, error) {
	talk, err := s.CheckParticipant(db, userID, talkID)
	if err != nil {
		return nil, err
	}

	if _, err := s.MarkRead(db, userID, talkID); err != nil {
		return nil, err
	}
	if talk.SenderID == userID {
		talk.SenderRead = true
	} else {
		talk.ReceiverRead = true
	}

	messages, err := s.talkRepo.FindMessages(db, talkID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	offers, err := s.talkRepo.FindOffersByTalk(db, talkID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := s.talkResponse(talk, userID)
	resp.Messages = make([]*dto.MessageResponse, 0, len(messages))
	for i := range messages {
		resp.Messages = append(resp.Messages, dto.NewMessageResponse(&messages[i]))
	}
	resp.Offers = make([]*dto.OfferResponse, 0, len(offers))
	for i := range offers {
		resp.Offers = append(resp.Offers, dto.NewOfferResponse(&offers[i]))
	}
	if n := len(resp.Messages); n > 0 {
		resp.LastMessage = resp.Messages[n-1]
	}
	return resp, nil
}

func (s *TalkServiceImpl) SendMessage(db *gorm.DB, userID, talkID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	talk, err := s.CheckParticipant(db, userID, talkID)
	if err != nil {
		return nil, err
	}
	if talk.Status == models.TalkStatusClosed {
		return nil, apperrors.ErrInvalidStatus("talk", "Talk is closed")
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	msg := &models.TalkMessage{
		TalkID:      talkID,
		SenderID:    userID,
		Content:     strings.TrimSpace(req.Content),
		Attachments: req.Attachments,
	}
	if err := s.talkRepo.CreateMessage(tx, msg); err != nil {
		return nil, apperrors.InternalError(err)
	}

	fields := map[string]interface{}{"last_message_at": msg.CreatedAt}
	if talk.SenderID == userID {
		fields["sender_read"] = true
		fields["receiver_read"] = false
	} else {
		fields["receiver_read"] = true
		fields["sender_read"] = false
	}
	if err := s.talkRepo.UpdateFields(tx, talkID, fields); err != nil {
		return nil, mapRepoError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	sender := talk.Sender
	if talk.ReceiverID == userID {
		sender = talk.Receiver
	}
	msg.Sender = sender
	resp := dto.NewMessageResponse(msg)

	otherID := talk.OtherParty(userID)
	s.realtime.BroadcastToConversation(talkID, EventMessage, resp, "")
	s.realtime.SendToUser(otherID, EventNewMessage, map[string]interface{}{
		"conversationId": talkID,
		"message":        resp,
	})

	name := "Someone"
	if sender != nil {
		name = sender.DisplayName()
	}
	s.notify(db, dto.CreateNotificationInput{
		UserID:    otherID,
		Type:      models.NotificationNewMessage,
		Title:     "New message from " + name,
		Content:   preview(msg.Content, 100),
		Data:      map[string]interface{}{"talkId": talkID, "messageId": msg.ID, "senderId": userID},
		ActionURL: "/talks/" + talkID,
	})

	return resp, nil
}

func (s *TalkServiceImpl) CreateOffer(db *gorm.DB, userID, talkID string, req *dto.CreateOfferRequest) (*dto.OfferResponse, error) {
	talk, err := s.CheckParticipant(db, userID, talkID)
	if err != nil {
		return nil, err
	}

	otherID := talk.OtherParty(userID)
	offer := &models.Offer{
		TalkID:         talkID,
		SenderID:       userID,
		ReceiverID:     otherID,
		Description:    strings.TrimSpace(req.Description),
		SimbiAmount:    req.SimbiAmount,
		ServiceOffered: req.ServiceOffered,
		Hours:          req.Hours,
		Status:         models.OfferStatusPending,
	}
	if err := s.talkRepo.CreateOffer(db, offer); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewOfferResponse(offer)
	s.realtime.BroadcastToConversation(talkID, EventOfferCreated, resp, "")
	s.realtime.SendToUser(otherID, EventNewOffer, map[string]interface{}{
		"conversationId": talkID,
		"offer":          resp,
	})

	s.notify(db, dto.CreateNotificationInput{
		UserID:    otherID,
		Type:      models.NotificationOfferReceived,
		Title:     "New offer received",
		Content:   preview(offer.Description, 100),
		Data:      map[string]interface{}{"talkId": talkID, "offerId": offer.ID},
		ActionURL: "/talks/" + talkID,
	})

	return resp, nil
}

func (s *TalkServiceImpl) AcceptOffer(db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error) {
	offer, err := s.respondToOffer(db, userID, offerID, models.OfferStatusAccepted)
	if err != nil {
		return nil, err
	}

	resp := dto.NewOfferResponse(offer)
	s.realtime.BroadcastToConversation(offer.TalkID, EventOfferUpdate, resp, "")
	s.realtime.SendToUser(offer.SenderID, EventOfferAccepted, map[string]interface{}{
		"conversationId": offer.TalkID,
		"offer":          resp,
	})

	s.notify(db, dto.CreateNotificationInput{
		UserID:    offer.SenderID,
		Type:      models.NotificationOfferAccepted,
		Title:     "Your offer was accepted",
		Content:   preview(offer.Description, 100),
		Data:      map[string]interface{}{"talkId": offer.TalkID, "offerId": offer.ID},
		ActionURL: "/talks/" + offer.TalkID,
	})

	return resp, nil
}

func (s *TalkServiceImpl) DeclineOffer(db *gorm.DB, userID, offerID string) (*dto.OfferResponse, error) {
	offer, err := s.respondToOffer(db, userID, offerID, models.OfferStatusDeclined)
	if err != nil {
		return nil, err
	}
	resp := dto.NewOfferResponse(offer)
	s.realtime.BroadcastToConversation(offer.TalkID, EventOfferUpdate, resp, "")
	return resp, nil
}

func (s *TalkServiceImpl) respondToOffer(db *gorm.DB, userID, offerID string, status models.OfferStatus) (*models.Offer, error) {
	offer, err := s.talkRepo.FindOfferByID(db, offerID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if offer.ReceiverID != userID {
		return nil, apperrors.ErrNotOfferReceiver
	}
	if offer.Status != models.OfferStatusPending {
		return nil, apperrors.ErrOfferNotPending
	}

	var acceptedAt *time.Time
	if status == models.OfferStatusAccepted {
		now := s.now()
		acceptedAt = &now
	}
	// Two concurrent answers both pass the check above; only one wins the update.
	answered, err := s.talkRepo.AnswerOffer(db, offerID, status, acceptedAt)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !answered {
		return nil, apperrors.ErrOfferNotPending
	}
	offer.Status = status
	offer.AcceptedAt = acceptedAt

	logger.CtxInfo(ctxOf(db), "Offer answered", "offer_id", offerID, "status", status)
	return offer, nil
}

func (s *TalkServiceImpl) ArchiveTalk(db *gorm.DB, userID, talkID string) error {
	talk, err := s.CheckParticipant(db, userID, talkID)
	if err != nil {
		return err
	}
	field := "receiver_archived"
	if talk.SenderID == userID {
		field = "sender_archived"
	}
	return mapRepoError(s.talkRepo.UpdateFields(db, talkID, map[string]interface{}{field: true}))
}

func (s *TalkServiceImpl) CheckParticipant(db *gorm.DB, userID, talkID string) (*models.Talk, error) {
	talk, err := s.talkRepo.FindByID(db, talkID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !talk.IsParticipant(userID) {
		return nil, apperrors.ErrTalkAccessDenied
	}
	return talk, nil
}

// FindOfferInTalk returns an offer of talkID that the caller sent or received.
func (s *TalkServiceImpl) FindOfferInTalk(db *gorm.DB, userID, talkID, offerID string) (*models.Offer, error) {
	if _, err := s.CheckParticipant(db, userID, talkID); err != nil {
		return nil, err
	}
	offer, err := s.talkRepo.FindOfferByID(db, offerID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if offer.TalkID != talkID {
		return nil, apperrors.ErrOfferNotFound
	}
	if offer.SenderID != userID && offer.ReceiverID != userID {
		return nil, apperrors.ErrTalkAccessDenied
	}
	return offer, nil
}

// MarkRead sets the caller's read flag. UpdateColumn keeps updated_at, and with it the talk order.
func (s *TalkServiceImpl) MarkRead(db *gorm.DB, userID, talkID string) (time.Time, error) {
	talk, err := s.talkRepo.FindByID(db, talkID)
	if err != nil {
		return time.Time{}, mapRepoError(err)
	}
	if !talk.IsParticipant(userID) {
		return time.Time{}, apperrors.ErrTalkAccessDenied
	}

	column := "receiver_read"
	if talk.SenderID == userID {
		column = "sender_read"
	}
	err = db.Model(&models.Talk{}).Where("id = ?", talkID).UpdateColumn(column, true).Error
	if err != nil {
		return time.Time{}, apperrors.InternalError(err)
	}
	return s.now(), nil
}

func (s *TalkServiceImpl) talkResponse(talk *models.Talk, viewerID string) *dto.TalkResponse {
	resp := dto.NewTalkResponse(talk, viewerID)
	if resp.OtherUser != nil {
		resp.OtherUser.IsOnline = s.realtime.IsUserOnline(resp.OtherUser.ID)
	}
	return resp
}

func (s *TalkServiceImpl) notify(db *gorm.DB, input dto.CreateNotificationInput) {
	if s.notificationService == nil {
		return
	}
	if _, err := s.notificationService.Create(db, input); err != nil {
		logger.CtxWithError(ctxOf(db), "Failed to create notification", err, "user_id", input.UserID, "type", input.Type)
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
