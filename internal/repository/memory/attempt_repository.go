package memory

import (
	"time"

	"paper-grading-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// AttemptRepository keeps upload attempts in memory. Attempts expire an
// hour after their last write; grading that takes longer is still visible
// through the submissions list.
type AttemptRepository struct {
	cache *cache.Cache
}

func NewAttemptRepository() *AttemptRepository {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &AttemptRepository{
		cache: c,
	}
}

func (r *AttemptRepository) Save(attempt *entity.UploadAttempt) {
	r.cache.Set(attempt.Id, attempt, cache.DefaultExpiration)
}

func (r *AttemptRepository) Get(attemptID string) (*entity.UploadAttempt, bool) {
	if x, found := r.cache.Get(attemptID); found {
		return x.(*entity.UploadAttempt), true
	}
	return nil, false
}

func (r *AttemptRepository) Delete(attemptID string) {
	r.cache.Delete(attemptID)
}

// SetLatest marks the attempt as the current one for a client key. Older
// attempts for the same key become superseded; their late completions are
// discarded by the service.
func (r *AttemptRepository) SetLatest(clientKey, attemptID string) {
	r.cache.Set("latest:"+clientKey, attemptID, cache.DefaultExpiration)
}

func (r *AttemptRepository) Latest(clientKey string) (string, bool) {
	if x, found := r.cache.Get("latest:" + clientKey); found {
		return x.(string), true
	}
	return "", false
}
