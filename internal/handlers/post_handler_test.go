package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nextgendev/talker/internal/models"
)

func TestCreatePostRecordsActivity(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)

	c, rec := env.jsonContext(http.MethodPost, "/api/v1/posts", `{"body":"hello world"}`)
	env.asUser(c, user)
	require.NoError(t, env.posts.CreatePost(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var post models.Post
	require.NoError(t, env.db.Where("user_id = ?", user.ID).First(&post).Error)
	require.Equal(t, "hello world", post.Body)

	// The author gets a self-targeted activity entry and their flag is raised.
	var note models.Notification
	require.NoError(t, env.db.Where("recipient_id = ?", user.ID).First(&note).Error)
	require.Equal(t, models.NotificationTypePost, note.Type)
	require.Equal(t, "Tweet posted successfully", note.Message)

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	require.True(t, stored.HasNotification)
}

func TestCreatePostRequiresVerifiedUser(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ada@example.com", "AdaLovelace1", false, false)

	c, _ := env.jsonContext(http.MethodPost, "/api/v1/posts", `{"body":"hello"}`)
	env.asUser(c, user)
	require.Equal(t, http.StatusUnauthorized, httpStatus(t, env.posts.CreatePost(c)))

	var count int64
	require.NoError(t, env.db.Model(&models.Post{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestCreatePostRejectsEmptyBody(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)

	c, _ := env.jsonContext(http.MethodPost, "/api/v1/posts", `{"body":""}`)
	env.asUser(c, user)
	require.Equal(t, http.StatusBadRequest, httpStatus(t, env.posts.CreatePost(c)))
}

func TestUpdatePostIsMemberOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	post := env.seedPost(t, user, "original")

	c, _ := env.jsonContext(http.MethodPut, "/api/v1/posts/1", `{"body":"edited"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, user)
	require.Equal(t, http.StatusUnauthorized, httpStatus(t, env.posts.UpdatePost(c)))

	var stored models.Post
	require.NoError(t, env.db.First(&stored, post.ID).Error)
	require.Equal(t, "original", stored.Body)
}

func TestUpdatePostOwnerMemberSucceeds(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, true)
	post := env.seedPost(t, user, "original")

	c, rec := env.jsonContext(http.MethodPut, "/api/v1/posts/1", `{"body":"edited"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, user)
	require.NoError(t, env.posts.UpdatePost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Post
	require.NoError(t, env.db.First(&stored, post.ID).Error)
	require.Equal(t, "edited", stored.Body)

	var note models.Notification
	require.NoError(t, env.db.Where("recipient_id = ?", user.ID).First(&note).Error)
	require.Equal(t, "Tweet updated successfully", note.Message)
}

func TestUpdatePostRejectsForeignPost(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	member := env.seedUser(t, "grace@example.com", "GraceHopper1", true, true)
	post := env.seedPost(t, owner, "not yours")

	c, _ := env.jsonContext(http.MethodPut, "/api/v1/posts/1", `{"body":"hijack"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, member)
	require.Equal(t, http.StatusNotFound, httpStatus(t, env.posts.UpdatePost(c)))
}

func TestDeletePostOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	other := env.seedUser(t, "grace@example.com", "GraceHopper1", true, false)
	post := env.seedPost(t, owner, "short lived")

	c, _ := env.jsonContext(http.MethodDelete, "/api/v1/posts/1", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, other)
	require.Equal(t, http.StatusNotFound, httpStatus(t, env.posts.DeletePost(c)))

	c, rec := env.jsonContext(http.MethodDelete, "/api/v1/posts/1", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, owner)
	require.NoError(t, env.posts.DeletePost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.Post{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestDeletePostCascadesDependents(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	liker := env.seedUser(t, "grace@example.com", "GraceHopper1", true, false)

	// Create through the handler so the post carries its activity
	// notification, then accumulate a like and a comment from someone else.
	c, _ := env.jsonContext(http.MethodPost, "/api/v1/posts", `{"body":"soon gone"}`)
	env.asUser(c, owner)
	require.NoError(t, env.posts.CreatePost(c))

	var post models.Post
	require.NoError(t, env.db.Where("user_id = ?", owner.ID).First(&post).Error)

	c, _ = env.jsonContext(http.MethodPost, "/api/v1/posts/1/like", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, liker)
	require.NoError(t, env.posts.LikePost(c))
	env.seedComment(t, liker, &post, "so long")

	c, rec := env.jsonContext(http.MethodDelete, "/api/v1/posts/1", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, owner)
	require.NoError(t, env.posts.DeletePost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var posts, comments, likes, notifications int64
	require.NoError(t, env.db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, env.db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, env.db.Model(&models.PostLike{}).Count(&likes).Error)
	require.NoError(t, env.db.Model(&models.Notification{}).Where("ref_post_id = ?", post.ID).Count(&notifications).Error)
	require.EqualValues(t, 0, posts)
	require.EqualValues(t, 0, comments)
	require.EqualValues(t, 0, likes)
	require.EqualValues(t, 0, notifications)
}

func TestLikePostNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	liker := env.seedUser(t, "grace@example.com", "GraceHopper1", true, false)
	post := env.seedPost(t, owner, "like me")

	c, rec := env.jsonContext(http.MethodPost, "/api/v1/posts/1/like", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, liker)
	require.NoError(t, env.posts.LikePost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var note models.Notification
	require.NoError(t, env.db.Where("recipient_id = ?", owner.ID).First(&note).Error)
	require.Equal(t, "liked your post", note.Message)
	require.NotNil(t, note.ActorID)
	require.Equal(t, liker.ID, *note.ActorID)

	var stored models.User
	require.NoError(t, env.db.First(&stored, owner.ID).Error)
	require.True(t, stored.HasNotification)
}

func TestLikePostTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	liker := env.seedUser(t, "grace@example.com", "GraceHopper1", true, false)
	post := env.seedPost(t, owner, "like me once")

	for i := 0; i < 2; i++ {
		c, _ := env.jsonContext(http.MethodPost, "/api/v1/posts/1/like", "")
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(post.ID))
		env.asUser(c, liker)
		err := env.posts.LikePost(c)
		if i == 0 {
			require.NoError(t, err)
		} else {
			require.Equal(t, http.StatusConflict, httpStatus(t, err))
		}
	}

	var count int64
	require.NoError(t, env.db.Model(&models.PostLike{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLikeOwnPostSkipsFanOut(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	post := env.seedPost(t, owner, "self like")

	c, _ := env.jsonContext(http.MethodPost, "/api/v1/posts/1/like", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, owner)
	require.NoError(t, env.posts.LikePost(c))

	var count int64
	require.NoError(t, env.db.Model(&models.Notification{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestUnlikePostNeverLiked(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	post := env.seedPost(t, owner, "never liked")

	c, _ := env.jsonContext(http.MethodDelete, "/api/v1/posts/1/unlike", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, owner)
	require.Equal(t, http.StatusNotFound, httpStatus(t, env.posts.UnlikePost(c)))
}

func TestUnlikePostRemovesLike(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	liker := env.seedUser(t, "grace@example.com", "GraceHopper1", true, false)
	post := env.seedPost(t, owner, "fickle crowd")
	require.NoError(t, env.db.Create(&models.PostLike{PostID: post.ID, UserID: liker.ID}).Error)

	c, rec := env.jsonContext(http.MethodDelete, "/api/v1/posts/1/unlike", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(post.ID))
	env.asUser(c, liker)
	require.NoError(t, env.posts.UnlikePost(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, env.db.Model(&models.PostLike{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestGetFeedPaginatesNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "ada@example.com", "AdaLovelace1", true, false)
	for i := 1; i <= 12; i++ {
		env.seedPost(t, owner, fmt.Sprintf("post %d", i))
	}

	c, rec := env.jsonContext(http.MethodGet, "/api/v1/posts/feed", "")
	require.NoError(t, env.posts.GetFeed(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	posts := body["posts"].([]any)
	require.Len(t, posts, 10)
	first := posts[0].(map[string]any)
	require.Equal(t, "post 12", first["body"])
}

func TestGetPostNotFound(t *testing.T) {
	env := newTestEnv(t)

	c, _ := env.jsonContext(http.MethodGet, "/api/v1/posts/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.Equal(t, http.StatusNotFound, httpStatus(t, env.posts.GetPost(c)))
}
