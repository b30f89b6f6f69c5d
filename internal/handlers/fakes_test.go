package handlers

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/raiser-connect/backend/internal/models"
	"github.com/raiser-connect/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the handler tests.

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---- users ----

type fakeUserRepo struct {
	users []*models.User
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{} }

func (r *fakeUserRepo) addUser(username, email, name string) *models.User {
	user := &models.User{
		ID:          primitive.NewObjectID(),
		Username:    username,
		Email:       email,
		Password:    "$2a$10$fakehash",
		Name:        name,
		PinnedPosts: []primitive.ObjectID{},
		CreatedAt:   time.Now(),
	}
	r.users = append(r.users, user)
	return user
}

func (r *fakeUserRepo) byID(id primitive.ObjectID) *models.User {
	for _, u := range r.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	if user.PinnedPosts == nil {
		user.PinnedPosts = []primitive.ObjectID{}
	}
	clone := *user
	r.users = append(r.users, &clone)
	return nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrUserNotFound
	}
	if u := r.byID(objID); u != nil {
		clone := *u
		return &clone, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u := r.byID(id); u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id string, req *models.UpdateProfileRequest) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrUserNotFound
	}
	u := r.byID(objID)
	if u == nil {
		return nil, repositories.ErrUserNotFound
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Bio != "" {
		u.Bio = req.Bio
	}
	if req.ProfilePicture != "" {
		u.ProfilePicture = req.ProfilePicture
	}
	if req.Location.Valid() {
		u.Location = req.Location.ToGeoPoint()
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) UpdateLocation(_ context.Context, id string, loc *models.GeoPoint) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrUserNotFound
	}
	u := r.byID(objID)
	if u == nil {
		return nil, repositories.ErrUserNotFound
	}
	u.Location = loc
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) AddPinnedPost(_ context.Context, userID string, postID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repositories.ErrUserNotFound
	}
	u := r.byID(objID)
	if u == nil {
		return repositories.ErrUserNotFound
	}
	for _, id := range u.PinnedPosts {
		if id == postID {
			return nil
		}
	}
	u.PinnedPosts = append(u.PinnedPosts, postID)
	return nil
}

func (r *fakeUserRepo) RemovePinnedPost(_ context.Context, userID string, postID primitive.ObjectID) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repositories.ErrUserNotFound
	}
	u := r.byID(objID)
	if u == nil {
		return repositories.ErrUserNotFound
	}
	kept := u.PinnedPosts[:0]
	for _, id := range u.PinnedPosts {
		if id != postID {
			kept = append(kept, id)
		}
	}
	u.PinnedPosts = kept
	return nil
}

func (r *fakeUserRepo) IncPostsCount(_ context.Context, userID string, delta int) error {
	return r.inc(userID, func(u *models.User) { u.PostsCount += delta })
}

func (r *fakeUserRepo) IncFollowersCount(_ context.Context, userID string, delta int) error {
	return r.inc(userID, func(u *models.User) { u.FollowersCount += delta })
}

func (r *fakeUserRepo) IncFollowingCount(_ context.Context, userID string, delta int) error {
	return r.inc(userID, func(u *models.User) { u.FollowingCount += delta })
}

func (r *fakeUserRepo) inc(userID string, apply func(*models.User)) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return repositories.ErrUserNotFound
	}
	if u := r.byID(objID); u != nil {
		apply(u)
	}
	return nil
}

func (r *fakeUserRepo) matches(u *models.User, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(u.Username), q) ||
		strings.Contains(strings.ToLower(u.Name), q) ||
		strings.Contains(strings.ToLower(u.Bio), q)
}

func (r *fakeUserRepo) SearchUsers(_ context.Context, query string, skip, limit int64) ([]models.User, error) {
	var matched []models.User
	for _, u := range r.users {
		if r.matches(u, query) {
			matched = append(matched, *u)
		}
	}
	return pageOf(matched, skip, limit), nil
}

func (r *fakeUserRepo) CountSearchUsers(_ context.Context, query string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if r.matches(u, query) {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) GetPopularUsers(_ context.Context, skip, limit int64) ([]models.User, error) {
	sorted := make([]models.User, len(r.users))
	for i, u := range r.users {
		sorted[i] = *u
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].FollowersCount > sorted[j].FollowersCount
	})
	return pageOf(sorted, skip, limit), nil
}

func (r *fakeUserRepo) CountUsers(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) GetNearbyUsers(_ context.Context, _, _, _ float64, exclude primitive.ObjectID, limit int64) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.Location != nil && u.ID != exclude {
			out = append(out, *u)
		}
	}
	return pageOf(out, 0, limit), nil
}

// ---- posts ----

type fakePostRepo struct {
	posts []*models.Post
	seq   int
}

func newFakePostRepo() *fakePostRepo { return &fakePostRepo{} }

func (r *fakePostRepo) byID(id primitive.ObjectID) *models.Post {
	for _, p := range r.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *fakePostRepo) CreatePost(_ context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	r.seq++
	post.CreatedAt = time.Unix(int64(r.seq), 0)
	post.UpdatedAt = post.CreatedAt
	if post.Images == nil {
		post.Images = []string{}
	}
	if post.Tags == nil {
		post.Tags = []primitive.ObjectID{}
	}
	clone := *post
	r.posts = append(r.posts, &clone)
	return nil
}

func (r *fakePostRepo) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrPostNotFound
	}
	if p := r.byID(objID); p != nil {
		clone := *p
		return &clone, nil
	}
	return nil, repositories.ErrPostNotFound
}

func (r *fakePostRepo) GetPostOwnedBy(ctx context.Context, id string, owner primitive.ObjectID) (*models.Post, error) {
	post, err := r.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != owner {
		return nil, repositories.ErrPostNotFound
	}
	return post, nil
}

func (r *fakePostRepo) newestFirst() []models.Post {
	sorted := make([]models.Post, len(r.posts))
	for i, p := range r.posts {
		sorted[i] = *p
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}

func (r *fakePostRepo) GetAllPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	return pageOf(r.newestFirst(), skip, limit), nil
}

func (r *fakePostRepo) CountPosts(_ context.Context) (int64, error) {
	return int64(len(r.posts)), nil
}

func (r *fakePostRepo) GetPostsByUserID(_ context.Context, userID string, skip, limit int64) ([]models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []models.Post{}, nil
	}
	var matched []models.Post
	for _, p := range r.newestFirst() {
		if p.UserID == objID {
			matched = append(matched, p)
		}
	}
	return pageOf(matched, skip, limit), nil
}

func (r *fakePostRepo) CountPostsByUserID(_ context.Context, userID string) (int64, error) {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, nil
	}
	var n int64
	for _, p := range r.posts {
		if p.UserID == objID {
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	var out []models.Post
	for _, id := range ids {
		if p := r.byID(id); p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) UpdatePost(_ context.Context, id string, req *models.UpdatePostRequest) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrPostNotFound
	}
	p := r.byID(objID)
	if p == nil {
		return nil, repositories.ErrPostNotFound
	}
	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.IsSolved != nil {
		p.IsSolved = *req.IsSolved
	}
	if req.Location.Valid() {
		p.Location = req.Location.ToGeoPoint()
	}
	clone := *p
	return &clone, nil
}

func (r *fakePostRepo) DeletePost(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrPostNotFound
	}
	for i, p := range r.posts {
		if p.ID == objID {
			r.posts = append(r.posts[:i], r.posts[i+1:]...)
			return nil
		}
	}
	return repositories.ErrPostNotFound
}

func (r *fakePostRepo) AddTag(_ context.Context, postID string, userID primitive.ObjectID) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, repositories.ErrPostNotFound
	}
	p := r.byID(objID)
	if p == nil {
		return nil, repositories.ErrPostNotFound
	}
	present := false
	for _, t := range p.Tags {
		if t == userID {
			present = true
		}
	}
	if !present {
		p.Tags = append(p.Tags, userID)
	}
	clone := *p
	return &clone, nil
}

func (r *fakePostRepo) RemoveTag(_ context.Context, postID string, userID primitive.ObjectID) (*models.Post, error) {
	objID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, repositories.ErrPostNotFound
	}
	p := r.byID(objID)
	if p == nil {
		return nil, repositories.ErrPostNotFound
	}
	kept := p.Tags[:0]
	for _, t := range p.Tags {
		if t != userID {
			kept = append(kept, t)
		}
	}
	p.Tags = kept
	clone := *p
	return &clone, nil
}

func (r *fakePostRepo) IncrementCommentsCount(_ context.Context, postID primitive.ObjectID) error {
	if p := r.byID(postID); p != nil {
		p.CommentsCount++
	}
	return nil
}

func (r *fakePostRepo) DecrementCommentsCount(_ context.Context, postID primitive.ObjectID) error {
	if p := r.byID(postID); p != nil && p.CommentsCount > 0 {
		p.CommentsCount--
	}
	return nil
}

func (r *fakePostRepo) matches(p models.Post, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

func (r *fakePostRepo) SearchPosts(_ context.Context, query string, skip, limit int64) ([]models.Post, error) {
	var matched []models.Post
	for _, p := range r.newestFirst() {
		if r.matches(p, query) {
			matched = append(matched, p)
		}
	}
	return pageOf(matched, skip, limit), nil
}

func (r *fakePostRepo) CountSearchPosts(_ context.Context, query string) (int64, error) {
	var n int64
	for _, p := range r.posts {
		if r.matches(*p, query) {
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) GetTrendingPosts(_ context.Context, skip, limit int64) ([]models.Post, error) {
	sorted := r.newestFirst()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CommentsCount > sorted[j].CommentsCount
	})
	return pageOf(sorted, skip, limit), nil
}

func (r *fakePostRepo) GetNearbyPosts(_ context.Context, _, _, _ float64, limit int64) ([]models.Post, error) {
	var out []models.Post
	for _, p := range r.newestFirst() {
		if p.Location != nil {
			out = append(out, p)
		}
	}
	return pageOf(out, 0, limit), nil
}

func (r *fakePostRepo) suggested(followingIDs []primitive.ObjectID, loc *models.GeoPoint) []models.Post {
	var out []models.Post
	for _, p := range r.newestFirst() {
		followed := false
		for _, id := range followingIDs {
			if p.UserID == id {
				followed = true
			}
		}
		if followed || (loc != nil && p.Location != nil) {
			out = append(out, p)
		}
	}
	return out
}

func (r *fakePostRepo) GetSuggestedPosts(_ context.Context, followingIDs []primitive.ObjectID, loc *models.GeoPoint, _ float64, skip, limit int64) ([]models.Post, error) {
	return pageOf(r.suggested(followingIDs, loc), skip, limit), nil
}

func (r *fakePostRepo) CountSuggestedPosts(_ context.Context, followingIDs []primitive.ObjectID, loc *models.GeoPoint, _ float64) (int64, error) {
	return int64(len(r.suggested(followingIDs, loc))), nil
}

// ---- comments ----

type fakeCommentRepo struct {
	comments []*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo { return &fakeCommentRepo{} }

func (r *fakeCommentRepo) byID(id primitive.ObjectID) *models.Comment {
	for _, cm := range r.comments {
		if cm.ID == id {
			return cm
		}
	}
	return nil
}

func (r *fakeCommentRepo) CreateComment(_ context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	clone := *comment
	r.comments = append(r.comments, &clone)
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrCommentNotFound
	}
	if cm := r.byID(objID); cm != nil {
		clone := *cm
		return &clone, nil
	}
	return nil, repositories.ErrCommentNotFound
}

func (r *fakeCommentRepo) GetCommentsByPostID(_ context.Context, postID primitive.ObjectID, skip, limit int64) ([]models.Comment, error) {
	var matched []models.Comment
	for _, cm := range r.comments {
		if cm.PostID == postID {
			matched = append(matched, *cm)
		}
	}
	return pageOf(matched, skip, limit), nil
}

func (r *fakeCommentRepo) CountCommentsByPostID(_ context.Context, postID primitive.ObjectID) (int64, error) {
	var n int64
	for _, cm := range r.comments {
		if cm.PostID == postID {
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) UpdateComment(_ context.Context, id string, req *models.CommentRequest) (*models.Comment, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrCommentNotFound
	}
	cm := r.byID(objID)
	if cm == nil {
		return nil, repositories.ErrCommentNotFound
	}
	if req.VoiceNote != nil {
		cm.VoiceNote = req.VoiceNote
		cm.IsVoiceNote = true
		cm.Text = ""
	} else if req.Text != "" {
		cm.Text = req.Text
		cm.IsVoiceNote = false
		cm.VoiceNote = nil
	}
	clone := *cm
	return &clone, nil
}

func (r *fakeCommentRepo) DeleteComment(_ context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrCommentNotFound
	}
	for i, cm := range r.comments {
		if cm.ID == objID {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrCommentNotFound
}

// ---- follows ----

type fakeFollowRepo struct {
	follows []*models.Follow
}

func newFakeFollowRepo() *fakeFollowRepo { return &fakeFollowRepo{} }

func (r *fakeFollowRepo) CreateFollow(_ context.Context, follow *models.Follow) error {
	follow.ID = primitive.NewObjectID()
	follow.CreatedAt = time.Now()
	clone := *follow
	r.follows = append(r.follows, &clone)
	return nil
}

func (r *fakeFollowRepo) DeleteFollow(_ context.Context, follower, following primitive.ObjectID) error {
	for i, f := range r.follows {
		if f.Follower == follower && f.Following == following {
			r.follows = append(r.follows[:i], r.follows[i+1:]...)
			return nil
		}
	}
	return repositories.ErrFollowNotFound
}

func (r *fakeFollowRepo) IsFollowing(_ context.Context, follower, following primitive.ObjectID) (bool, error) {
	for _, f := range r.follows {
		if f.Follower == follower && f.Following == following {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFollowRepo) GetFollowers(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follow, error) {
	var matched []models.Follow
	for _, f := range r.follows {
		if f.Following == userID {
			matched = append(matched, *f)
		}
	}
	return pageOf(matched, skip, limit), nil
}

func (r *fakeFollowRepo) CountFollowers(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, f := range r.follows {
		if f.Following == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeFollowRepo) GetFollowing(_ context.Context, userID primitive.ObjectID, skip, limit int64) ([]models.Follow, error) {
	var matched []models.Follow
	for _, f := range r.follows {
		if f.Follower == userID {
			matched = append(matched, *f)
		}
	}
	return pageOf(matched, skip, limit), nil
}

func (r *fakeFollowRepo) CountFollowing(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var n int64
	for _, f := range r.follows {
		if f.Follower == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeFollowRepo) GetFollowingIDs(_ context.Context, follower primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, f := range r.follows {
		if f.Follower == follower {
			ids = append(ids, f.Following)
		}
	}
	return ids, nil
}

// pageOf applies the skip/limit window to an in-memory result set
func pageOf[T any](items []T, skip, limit int64) []T {
	if skip >= int64(len(items)) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && int64(len(items)) > limit {
		items = items[:limit]
	}
	return items
}
