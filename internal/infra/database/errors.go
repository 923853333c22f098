package database

import "fmt"

// Lookup errors returned by the Postgres repositories.
var ErrUserNotFound = fmt.Errorf("user not found")
var ErrChatNotFound = fmt.Errorf("chat not found")
var ErrBroadcastMessageNotFound = fmt.Errorf("active broadcast message not found")
