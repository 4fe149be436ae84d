package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"simbi_backend/internal/models"
	"simbi_backend/internal/services"
	"simbi_backend/internal/services/dto"
	"simbi_backend/internal/testutil"
	"simbi_backend/pkg/apperrors"
)

func TestTalkLifecycle(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, &models.User{FirstName: "Alice"}, "")
	bob := testutil.CreateUser(t, f.db, &models.User{FirstName: "Bob"}, "")
	service := testutil.CreateService(t, f.db, bob.ID, "Bike repair")
	talks := f.svc.TalkService

	talk, err := talks.CreateTalk(f.db, alice.ID, &dto.CreateTalkRequest{
		ReceiverID:     bob.ID,
		ServiceID:      &service.ID,
		Subject:        "Flat tyre",
		InitialMessage: "Can you fix it this week?",
	})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, talk.OtherUser.ID)
	require.NotNil(t, talk.LastMessage)
	assert.True(t, talk.IsRead, "the starter has read their own message")

	bobTalks, err := talks.GetTalks(f.db, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobTalks, 1)
	assert.False(t, bobTalks[0].IsRead)
	assert.Equal(t, "Can you fix it this week?", bobTalks[0].LastMessage.Content)

	msg, err := talks.SendMessage(f.db, bob.ID, talk.ID, &dto.SendMessageRequest{Content: "  Sure, Friday  "})
	require.NoError(t, err)
	assert.Equal(t, "Sure, Friday", msg.Content)
	assert.Equal(t, 1, f.realtime.sentTo(alice.ID, services.EventNewMessage))

	price := 20
	offer, err := talks.CreateOffer(f.db, alice.ID, talk.ID, &dto.CreateOfferRequest{Description: "Repair", SimbiAmount: &price})
	require.NoError(t, err)
	assert.Equal(t, bob.ID, offer.ReceiverID)
	assert.Equal(t, models.OfferStatusPending, offer.Status)

	_, err = talks.AcceptOffer(f.db, alice.ID, offer.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotOfferReceiver)

	accepted, err := talks.AcceptOffer(f.db, bob.ID, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OfferStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.AcceptedAt)
	assert.Equal(t, 1, f.realtime.sentTo(alice.ID, services.EventOfferAccepted))

	_, err = talks.DeclineOffer(f.db, bob.ID, offer.ID)
	assert.ErrorIs(t, err, apperrors.ErrOfferNotPending)

	full, err := talks.GetTalk(f.db, alice.ID, talk.ID)
	require.NoError(t, err)
	assert.Len(t, full.Messages, 2)
	assert.Len(t, full.Offers, 1)
	assert.True(t, full.IsRead)

	assert.Equal(t,
		[]string{services.EventMessage, services.EventOfferCreated, services.EventOfferUpdate},
		f.realtime.broadcastEvents())

	var notifications int64
	require.NoError(t, f.db.Model(&models.Notification{}).Where("user_id = ?", bob.ID).Count(&notifications).Error)
	assert.EqualValues(t, 2, notifications, "talk started and offer received")
}

func TestTalk_AccessRules(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, &models.User{}, "")
	bob := testutil.CreateUser(t, f.db, &models.User{}, "")
	eve := testutil.CreateUser(t, f.db, &models.User{}, "")
	talks := f.svc.TalkService

	_, err := talks.CreateTalk(f.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: alice.ID})
	assert.ErrorIs(t, err, apperrors.ErrCannotTalkToSelf)

	_, err = talks.CreateTalk(f.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: "nobody"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	talk, err := talks.CreateTalk(f.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID})
	require.NoError(t, err)
	assert.Nil(t, talk.LastMessage)

	_, err = talks.GetTalk(f.db, eve.ID, talk.ID)
	assert.ErrorIs(t, err, apperrors.ErrTalkAccessDenied)

	_, err = talks.SendMessage(f.db, eve.ID, talk.ID, &dto.SendMessageRequest{Content: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrTalkAccessDenied)

	_, err = talks.MarkRead(f.db, eve.ID, talk.ID)
	assert.ErrorIs(t, err, apperrors.ErrTalkAccessDenied)

	_, err = talks.GetTalk(f.db, alice.ID, "missing")
	assert.ErrorIs(t, err, apperrors.ErrTalkNotFound)
}

func TestArchiveTalk_HidesForCallerOnly(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, &models.User{}, "")
	bob := testutil.CreateUser(t, f.db, &models.User{}, "")
	talks := f.svc.TalkService

	talk, err := talks.CreateTalk(f.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID, InitialMessage: "hey"})
	require.NoError(t, err)

	require.NoError(t, talks.ArchiveTalk(f.db, alice.ID, talk.ID))

	mine, err := talks.GetTalks(f.db, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := talks.GetTalks(f.db, bob.ID)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestAnswerOffer_ConcurrentAnswersSettleOnce(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, &models.User{}, "")
	bob := testutil.CreateUser(t, f.db, &models.User{}, "")
	talks := f.svc.TalkService

	talk, err := talks.CreateTalk(f.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID})
	require.NoError(t, err)
	offer, err := talks.CreateOffer(f.db, alice.ID, talk.ID, &dto.CreateOfferRequest{Description: "Two hours of tutoring"})
	require.NoError(t, err)

	const attempts = 6
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = talks.AcceptOffer(f.db, bob.ID, offer.ID)
			} else {
				_, errs[i] = talks.DeclineOffer(f.db, bob.ID, offer.ID)
			}
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrOfferNotPending)
	}
	assert.Equal(t, 1, succeeded)

	var stored models.Offer
	require.NoError(t, f.db.First(&stored, "id = ?", offer.ID).Error)
	assert.NotEqual(t, models.OfferStatusPending, stored.Status)
	assert.Equal(t, stored.Status == models.OfferStatusAccepted, stored.AcceptedAt != nil)
}

func TestAnswerOffer_StaleReadIsRejected(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, &models.User{}, "")
	bob := testutil.CreateUser(t, f.db, &models.User{}, "")
	talks := f.svc.TalkService

	talk, err := talks.CreateTalk(f.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID})
	require.NoError(t, err)
	offer, err := talks.CreateOffer(f.db, alice.ID, talk.ID, &dto.CreateOfferRequest{Description: "Garden help"})
	require.NoError(t, err)

	// Another request declines the offer between our read and our write.
	declined := false
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:decline_first", func(tx *gorm.DB) {
		if declined {
			return
		}
		declined = true
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
			Exec("UPDATE offers SET status = ? WHERE id = ?", models.OfferStatusDeclined, offer.ID).Error)
	}))
	t.Cleanup(func() { _ = f.db.Callback().Update().Remove("test:decline_first") })

	_, err = talks.AcceptOffer(f.db, bob.ID, offer.ID)
	assert.ErrorIs(t, err, apperrors.ErrOfferNotPending)
	assert.True(t, declined)

	var stored models.Offer
	require.NoError(t, f.db.First(&stored, "id = ?", offer.ID).Error)
	assert.Equal(t, models.OfferStatusDeclined, stored.Status)
	assert.Nil(t, stored.AcceptedAt)
	assert.Zero(t, f.realtime.sentTo(alice.ID, services.EventOfferAccepted))
}

func TestFindOfferInTalk(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, &models.User{}, "")
	bob := testutil.CreateUser(t, f.db, &models.User{}, "")
	carol := testutil.CreateUser(t, f.db, &models.User{}, "")
	talks := f.svc.TalkService

	aliceBob, err := talks.CreateTalk(f.db, alice.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID})
	require.NoError(t, err)
	carolBob, err := talks.CreateTalk(f.db, carol.ID, &dto.CreateTalkRequest{ReceiverID: bob.ID})
	require.NoError(t, err)

	own, err := talks.CreateOffer(f.db, alice.ID, aliceBob.ID, &dto.CreateOfferRequest{Description: "Lessons"})
	require.NoError(t, err)
	foreign, err := talks.CreateOffer(f.db, carol.ID, carolBob.ID, &dto.CreateOfferRequest{Description: "Painting"})
	require.NoError(t, err)

	found, err := talks.FindOfferInTalk(f.db, bob.ID, aliceBob.ID, own.ID)
	require.NoError(t, err)
	assert.Equal(t, own.ID, found.ID)

	_, err = talks.FindOfferInTalk(f.db, alice.ID, aliceBob.ID, foreign.ID)
	assert.ErrorIs(t, err, apperrors.ErrOfferNotFound)

	_, err = talks.FindOfferInTalk(f.db, alice.ID, carolBob.ID, foreign.ID)
	assert.ErrorIs(t, err, apperrors.ErrTalkAccessDenied)

	_, err = talks.FindOfferInTalk(f.db, alice.ID, aliceBob.ID, "missing")
	assert.ErrorIs(t, err, apperrors.ErrOfferNotFound)
}
