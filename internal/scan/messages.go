package scan

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Keys are the English texts; other locales are registered in newCatalog.
const (
	msgExpected             = "%[1]s checked in to %[2]s."
	msgWrongBooth           = "%[1]s is expected at %[2]s, not here."
	msgRegistrationRequired = "%[1]s is not registered for %[2]s. Registration is required."
	msgWalkIn               = "%[1]s joined %[2]s as a walk-in."
	msgWalkInConflict       = "%[1]s joined %[2]s as a walk-in but is also registered for %[3]s."
	msgOutOfSchedule        = "%[1]s scanned at %[2]s outside of any session."
	msgDuplicate            = "%[1]s was already scanned at %[2]s within the last 5 minutes."
	msgMissingTarget        = "Internal error: the scan has neither a location nor a session."
	msgMissingAttendee      = "Internal error: the scan has no attendee."
	msgSessionNotFound      = "Session %[1]s does not exist."
	msgStorageFailure       = "The scan could not be saved: %[1]s"
	msgSavedOffline         = "Offline: the scan of %[1]s was saved and will sync when the connection returns."
	msgAutoCreatedSuffix    = " (new attendee record created)"

	noteRegistrationRequired = "registration required"
	noteConflictFormat       = "conflict: also registered for %s"
	noteAutoCreated          = "attendee auto-created"
)

var japanese = map[string]string{
	msgExpected:             "%[1]s さんが %[2]s にチェックインしました。",
	msgWrongBooth:           "%[1]s さんの担当は %[2]s です。",
	msgRegistrationRequired: "%[1]s さんは %[2]s に登録されていません。事前登録が必要です。",
	msgWalkIn:               "%[1]s さんが %[2]s に当日参加しました。",
	msgWalkInConflict:       "%[1]s さんが %[2]s に当日参加しました（%[3]s にも登録されています）。",
	msgOutOfSchedule:        "%[1]s さんが %[2]s でセッション時間外にスキャンされました。",
	msgDuplicate:            "%[1]s さんは %[2]s で5分以内にスキャン済みです。",
	msgMissingTarget:        "内部エラー：スキャンに場所もセッションも指定されていません。",
	msgMissingAttendee:      "内部エラー：スキャンに参加者が指定されていません。",
	msgSessionNotFound:      "セッション %[1]s は存在しません。",
	msgStorageFailure:       "スキャンを保存できませんでした：%[1]s",
	msgSavedOffline:         "オフライン：%[1]s さんのスキャンを保存しました。接続が戻り次第同期します。",
	msgAutoCreatedSuffix:    "（参加者レコードを新規作成しました）",
}

func newCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range japanese {
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, fmt.Errorf("failed to register message %q: %w", key, err)
		}
		if err := b.SetString(language.Japanese, key, text); err != nil {
			return nil, fmt.Errorf("failed to register japanese message %q: %w", key, err)
		}
	}
	return b, nil
}

// Messages renders operator feedback in one locale.
type Messages struct {
	printer *message.Printer
}

func NewMessages(tag language.Tag) (*Messages, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	return &Messages{printer: message.NewPrinter(tag, message.Catalog(cat))}, nil
}

func (m *Messages) sprintf(key string, args ...any) string {
	return m.printer.Sprintf(key, args...)
}

func (m *Messages) SavedOffline(attendeeID string) string {
	return m.sprintf(msgSavedOffline, attendeeID)
}

func (m *Messages) StorageFailure(err error) string {
	return m.sprintf(msgStorageFailure, err.Error())
}

func (m *Messages) withAutoCreated(text string, autoCreated bool) string {
	if !autoCreated {
		return text
	}
	return text + m.sprintf(msgAutoCreatedSuffix)
}

func (m *Messages) classified(c Classification, attendeeName, targetName string) string {
	switch v := c.(type) {
	case Expected:
		return m.sprintf(msgExpected, attendeeName, v.Session.Name)
	case WrongBooth:
		if v.RegistrationRequired {
			return m.sprintf(msgRegistrationRequired, attendeeName, v.Session.Name)
		}
		return m.sprintf(msgWrongBooth, attendeeName, v.ExpectedLocationName)
	case WalkIn:
		if v.Conflict != nil {
			return m.sprintf(msgWalkInConflict, attendeeName, v.Session.Name, v.Conflict.SessionName)
		}
		return m.sprintf(msgWalkIn, attendeeName, v.Session.Name)
	default:
		return m.sprintf(msgOutOfSchedule, attendeeName, targetName)
	}
}
