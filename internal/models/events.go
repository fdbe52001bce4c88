package models

import "encoding/json"

// Realtime event kinds emitted by the admin update stream.
const (
	EventKindJoinAdminRoom = "join-admin-room"
	EventKindRoomJoined    = "room-joined"
	EventKindDynamicUpdate = "dynamic-update"
	EventKindAdminUpdate   = "admin-specific-update"
	EventKindSplashScreen  = "splash-screen"
	EventKindHomePage      = "home-page"
	EventKindAppInfo       = "app-info"
	EventKindTestUpdate    = "test-update"
	EventKindConfigUpdate  = "configuration-update"
)

// RealtimeEvent is one named event from the tenant-scoped stream. The payload
// is opaque to the sync layer; only the kind is interpreted.
type RealtimeEvent struct {
	Kind    string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// refetchKinds is the allow-list of kinds that signal "configuration
// changed"; anything outside it is ignored for forward compatibility.
var refetchKinds = map[string]struct{}{
	EventKindDynamicUpdate: {},
	EventKindAdminUpdate:   {},
	EventKindSplashScreen:  {},
	EventKindHomePage:      {},
	EventKindAppInfo:       {},
	EventKindTestUpdate:    {},
	EventKindConfigUpdate:  {},
}

// TriggersRefetch reports whether an event of the given kind should cause a
// full configuration refetch.
func TriggersRefetch(kind string) bool {
	_, ok := refetchKinds[kind]
	return ok
}

// JoinRoomMessage is the payload emitted when joining the tenant room.
type JoinRoomMessage struct {
	TenantID string `json:"tenantId"`
}
