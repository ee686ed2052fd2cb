package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TeacherSessionKey returns the cache key holding a teacher's active token id
func (r *CacheKeyStruct) TeacherSessionKey(teacherID string) string {
	return fmt.Sprintf("login:teacher:%s", teacherID)
}

// ClassAnalyticsKey returns the cache key for a class's analytics summary
func (r *CacheKeyStruct) ClassAnalyticsKey(classID string) string {
	return fmt.Sprintf("analytics:class:%s", classID)
}

// ClassScoresChannel returns the Redis PubSub channel announcing new score records for a class
func (r *CacheKeyStruct) ClassScoresChannel(classID string) string {
	return fmt.Sprintf("class:%s:scores", classID)
}

// AuthEventsChannel returns the Redis PubSub channel carrying a teacher's sign-in state changes
func (r *CacheKeyStruct) AuthEventsChannel(teacherID string) string {
	return fmt.Sprintf("auth:%s:events", teacherID)
}

var CacheKey = NewCacheKeyStruct()
