package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewdesk/internal/models"
)

type fakeConversationRepo struct {
	nextID int
	convs  map[int]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{nextID: 1, convs: make(map[int]*models.Conversation)}
}

func (r *fakeConversationRepo) Create(participants []int64) (*models.Conversation, error) {
	c := &models.Conversation{ID: r.nextID, Participants: participants, LastMessageAt: time.Now()}
	r.convs[c.ID] = c
	r.nextID++
	return c, nil
}

func (r *fakeConversationRepo) GetByID(id int) (*models.Conversation, error) {
	return r.convs[id], nil
}

func (r *fakeConversationRepo) ListByParticipant(userID int) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, c := range r.convs {
		for _, p := range c.Participants {
			if p == int64(userID) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) IsParticipant(conversationID, userID int) (bool, error) {
	c, ok := r.convs[conversationID]
	if !ok {
		return false, nil
	}
	for _, p := range c.Participants {
		if p == int64(userID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeConversationRepo) TouchLastMessage(conversationID int, at time.Time) error {
	if c, ok := r.convs[conversationID]; ok {
		c.LastMessageAt = at
	}
	return nil
}

func (r *fakeConversationRepo) Delete(id int) error {
	delete(r.convs, id)
	return nil
}

type fakeMessageRepo struct {
	nextID int
	msgs   []*models.Message
}

func (r *fakeMessageRepo) Create(msg *models.Message) error {
	r.nextID++
	msg.ID = r.nextID
	cp := *msg
	r.msgs = append(r.msgs, &cp)
	return nil
}

func (r *fakeMessageRepo) GetByID(id int) (*models.Message, error) {
	for _, m := range r.msgs {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) ListByConversation(conversationID int) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Delete(id int) error { return nil }

func newChatFixture(t *testing.T, userIDs ...int) (*ChatService, *fakeConversationRepo) {
	t.Helper()
	users := newFakeUserRepo()
	for _, id := range userIDs {
		require.NoError(t, users.Create(&models.User{
			Name:  "user",
			Email: "u" + string(rune('0'+id)) + "@example.com",
		}))
	}
	convs := newFakeConversationRepo()
	svc := NewChatService(convs, &fakeMessageRepo{}, users, nil)
	return svc, convs
}

func TestCreateConversationValidatesParticipants(t *testing.T) {
	svc, _ := newChatFixture(t, 1, 2)

	_, err := svc.CreateConversation([]int64{1})
	assert.Error(t, err, "one participant is not a conversation")

	_, err = svc.CreateConversation([]int64{1, 99})
	assert.ErrorIs(t, err, ErrUserNotFound)

	conv, err := svc.CreateConversation([]int64{1, 2})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, conv.Participants)
}

func TestSendMessageMembershipGate(t *testing.T) {
	svc, _ := newChatFixture(t, 1, 2, 3)

	conv, err := svc.CreateConversation([]int64{1, 2})
	require.NoError(t, err)

	_, err = svc.SendMessage(conv.ID, 3, "hi", nil)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.SendMessage(999, 1, "hi", nil)
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = svc.SendMessage(conv.ID, 1, "", nil)
	assert.Error(t, err, "empty content is rejected")

	msg, err := svc.SendMessage(conv.ID, 1, "hi", []int64{7})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, msg.ReadBy, "sender has read their own message")
	assert.Equal(t, []int64{7}, msg.Attachments)
}

func TestSendMessageBumpsConversation(t *testing.T) {
	svc, convs := newChatFixture(t, 1, 2)

	conv, err := svc.CreateConversation([]int64{1, 2})
	require.NoError(t, err)
	before := convs.convs[conv.ID].LastMessageAt

	time.Sleep(5 * time.Millisecond)
	_, err = svc.SendMessage(conv.ID, 1, "hi", nil)
	require.NoError(t, err)
	assert.True(t, convs.convs[conv.ID].LastMessageAt.After(before))
}

func TestMessagesForConversationGated(t *testing.T) {
	svc, _ := newChatFixture(t, 1, 2, 3)

	conv, err := svc.CreateConversation([]int64{1, 2})
	require.NoError(t, err)
	_, err = svc.SendMessage(conv.ID, 1, "first", nil)
	require.NoError(t, err)
	_, err = svc.SendMessage(conv.ID, 2, "second", nil)
	require.NoError(t, err)

	_, err = svc.MessagesForConversation(conv.ID, 3)
	assert.ErrorIs(t, err, ErrNotParticipant)

	msgs, err := svc.MessagesForConversation(conv.ID, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
}
