package service

import "fmt"

// Redis key 约定集中在这里，写入与失效方必须一致
func followerCountKey(memberID string) string  { return fmt.Sprintf("cnt:follower:%s", memberID) }
func followingCountKey(memberID string) string { return fmt.Sprintf("cnt:following:%s", memberID) }
func followerIndexKey(memberID string) string  { return fmt.Sprintf("followers:index:%s", memberID) }
func memberSnapshotKey(memberID string) string { return fmt.Sprintf("member:%s", memberID) }
func representImageKey(memberID string) string { return fmt.Sprintf("represent:%s", memberID) }
func verifyCodeKey(email string) string        { return fmt.Sprintf("CODE:%s", email) }
func refreshTokenKey(memberID string) string   { return fmt.Sprintf("refresh:%s", memberID) }
