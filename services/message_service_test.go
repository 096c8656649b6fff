package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yashrajoria/farm-marketplace/apperrors"
	"github.com/yashrajoria/farm-marketplace/models"
)

func testUser(role string) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Role:     role,
		FullName: "Test " + role,
		IsActive: true,
	}
}

func newMessageService(users ...*models.User) (*MessageService, *memMessageRepo) {
	messages := newMemMessageRepo()
	return NewMessageService(messages, newMemUserRepo(users...), zap.NewNop()), messages
}

func TestSend_NonAdminMayOnlyMessageAdmin(t *testing.T) {
	ctx := context.Background()
	admin := testUser(models.RoleAdmin)
	farmer := testUser(models.RoleFarmer)
	buyer := testUser(models.RoleBuyer)
	svc, _ := newMessageService(admin, farmer, buyer)

	_, err := svc.Send(ctx, farmer.ID, models.RoleFarmer, &models.SendMessageRequest{
		ReceiverID: buyer.ID, Body: "hi",
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	msg, err := svc.Send(ctx, farmer.ID, models.RoleFarmer, &models.SendMessageRequest{
		ReceiverID: admin.ID, Body: "hi",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ThreadIDFor(farmer.ID, admin.ID), msg.ThreadID)
	assert.Equal(t, "No Subject", msg.Subject)

	// admins can reach anyone
	_, err = svc.Send(ctx, admin.ID, models.RoleAdmin, &models.SendMessageRequest{
		ReceiverID: buyer.ID, Body: "hello",
	})
	assert.NoError(t, err)
}

func TestSend_Validation(t *testing.T) {
	ctx := context.Background()
	admin := testUser(models.RoleAdmin)
	farmer := testUser(models.RoleFarmer)
	inactive := testUser(models.RoleBuyer)
	inactive.IsActive = false
	svc, _ := newMessageService(admin, farmer, inactive)

	_, err := svc.Send(ctx, farmer.ID, models.RoleFarmer, &models.SendMessageRequest{ReceiverID: admin.ID})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Send(ctx, farmer.ID, models.RoleFarmer, &models.SendMessageRequest{ReceiverID: farmer.ID, Body: "me"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Send(ctx, admin.ID, models.RoleAdmin, &models.SendMessageRequest{ReceiverID: inactive.ID, Body: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Send(ctx, farmer.ID, models.RoleFarmer, &models.SendMessageRequest{ReceiverID: uuid.New(), Body: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSend_ReplyMustStayInThread(t *testing.T) {
	ctx := context.Background()
	admin := testUser(models.RoleAdmin)
	farmer := testUser(models.RoleFarmer)
	buyer := testUser(models.RoleBuyer)
	svc, _ := newMessageService(admin, farmer, buyer)

	farmerMsg, err := svc.Send(ctx, farmer.ID, models.RoleFarmer, &models.SendMessageRequest{
		ReceiverID: admin.ID, Body: "about my listing",
	})
	require.NoError(t, err)

	// replying in the same pair is fine
	reply, err := svc.Send(ctx, admin.ID, models.RoleAdmin, &models.SendMessageRequest{
		ReceiverID: farmer.ID, Body: "approved", ParentMessageID: &farmerMsg.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, farmerMsg.ThreadID, reply.ThreadID)

	// citing that parent in a different pair is not
	_, err = svc.Send(ctx, admin.ID, models.RoleAdmin, &models.SendMessageRequest{
		ReceiverID: buyer.ID, Body: "fyi", ParentMessageID: &farmerMsg.ID,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidThread)

	missing := uuid.New()
	_, err = svc.Send(ctx, admin.ID, models.RoleAdmin, &models.SendMessageRequest{
		ReceiverID: farmer.ID, Body: "fyi", ParentMessageID: &missing,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidThread)
}

func TestOpenThread_MarksReadIdempotently(t *testing.T) {
	ctx := context.Background()
	admin := testUser(models.RoleAdmin)
	buyer := testUser(models.RoleBuyer)
	svc, _ := newMessageService(admin, buyer)

	for _, body := range []string{"first", "second"} {
		_, err := svc.Send(ctx, admin.ID, models.RoleAdmin, &models.SendMessageRequest{
			ReceiverID: buyer.ID, Body: body,
		})
		require.NoError(t, err)
	}
	threadID := models.ThreadIDFor(admin.ID, buyer.ID)

	unread, err := svc.UnreadCount(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	msgs, err := svc.OpenThread(ctx, buyer.ID, threadID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Body)
	for _, m := range msgs {
		assert.True(t, m.IsRead)
		assert.NotNil(t, m.ReadAt)
	}

	unread, err = svc.UnreadCount(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	// opening again returns the same view and stays at zero
	again, err := svc.OpenThread(ctx, buyer.ID, threadID)
	require.NoError(t, err)
	assert.Len(t, again, 2)
	unread, err = svc.UnreadCount(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestOpenThread_OnlyParticipantsMaySee(t *testing.T) {
	ctx := context.Background()
	admin := testUser(models.RoleAdmin)
	buyer := testUser(models.RoleBuyer)
	outsider := testUser(models.RoleFarmer)
	svc, _ := newMessageService(admin, buyer, outsider)

	_, err := svc.Send(ctx, admin.ID, models.RoleAdmin, &models.SendMessageRequest{
		ReceiverID: buyer.ID, Body: "private",
	})
	require.NoError(t, err)
	threadID := models.ThreadIDFor(admin.ID, buyer.ID)

	_, err = svc.OpenThread(ctx, outsider.ID, threadID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.OpenThread(ctx, buyer.ID, "thread-nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListConversations_OnePerCounterpartyNewestFirst(t *testing.T) {
	ctx := context.Background()
	admin := testUser(models.RoleAdmin)
	farmer := testUser(models.RoleFarmer)
	buyer := testUser(models.RoleBuyer)
	svc, _ := newMessageService(admin, farmer, buyer)

	_, err := svc.Send(ctx, farmer.ID, models.RoleFarmer, &models.SendMessageRequest{
		ReceiverID: admin.ID, Body: "farmer q1",
	})
	require.NoError(t, err)
	_, err = svc.Send(ctx, farmer.ID, models.RoleFarmer, &models.SendMessageRequest{
		ReceiverID: admin.ID, Body: "farmer q2",
	})
	require.NoError(t, err)
	_, err = svc.Send(ctx, buyer.ID, models.RoleBuyer, &models.SendMessageRequest{
		ReceiverID: admin.ID, Body: "buyer q",
	})
	require.NoError(t, err)

	convos, err := svc.ListConversations(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, convos, 2)

	// the buyer thread has the latest message so it leads
	assert.Equal(t, buyer.ID, convos[0].OtherUserID)
	assert.Equal(t, "buyer q", convos[0].LastMessage.Body)
	assert.Equal(t, 1, convos[0].UnreadCount)

	assert.Equal(t, farmer.ID, convos[1].OtherUserID)
	assert.Equal(t, "farmer q2", convos[1].LastMessage.Body)
	assert.Equal(t, 2, convos[1].UnreadCount)
	assert.Equal(t, farmer.FullName, convos[1].OtherUserName)
}

func TestListConversations_CounterpartyLookup(t *testing.T) {
	ctx := context.Background()
	admin := testUser(models.RoleAdmin)
	farmer := testUser(models.RoleFarmer)
	messages := newMemMessageRepo()
	users := newMemUserRepo(admin, farmer)
	svc := NewMessageService(messages, users, zap.NewNop())

	_, err := svc.Send(ctx, farmer.ID, models.RoleFarmer, &models.SendMessageRequest{
		ReceiverID: admin.ID, Body: "hello",
	})
	require.NoError(t, err)

	// a store failure during the lookup fails the listing
	users.findErr = errors.New("store unavailable")
	_, err = svc.ListConversations(ctx, admin.ID)
	require.Error(t, err)

	// a counterparty deleted since the exchange just loses its name
	users.findErr = nil
	delete(users.users, farmer.ID)
	convos, err := svc.ListConversations(ctx, admin.ID)
	require.NoError(t, err)
	require.Len(t, convos, 1)
	assert.Equal(t, farmer.ID, convos[0].OtherUserID)
	assert.Empty(t, convos[0].OtherUserName)
}

func TestContacts_ByRole(t *testing.T) {
	ctx := context.Background()
	admin := testUser(models.RoleAdmin)
	farmer := testUser(models.RoleFarmer)
	buyer := testUser(models.RoleBuyer)
	svc, _ := newMessageService(admin, farmer, buyer)

	contacts, err := svc.Contacts(ctx, models.RoleFarmer)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, models.RoleAdmin, contacts[0].Role)

	contacts, err = svc.Contacts(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}
