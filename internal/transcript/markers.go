package transcript

import "strings"

// Marker is a phrase a chat client writes into the transcript in a given locale.
type Marker struct {
	Locale string
	Phrase string
}

// MediaMarkers replace an attachment's content in exports created without media
// or for attachments that were not bundled.
var MediaMarkers = []Marker{
	{"en", "<Media omitted>"},
	{"en", "audio omitted"},
	{"en", "video omitted"},
	{"en", "image omitted"},
	{"en", "document omitted"},
	{"en", "sticker omitted"},
	{"ru", "Медиафайл пропущен"},
	{"ru", "Аудио пропущено"},
	{"ru", "<Без медиафайлов>"},
}

// SystemMarkers identify notices generated by the chat client rather than written by a person.
// Matching is a plain substring test, so short English verbs also catch ordinary sentences.
var SystemMarkers = []Marker{
	{"en", "Messages and calls are end-to-end encrypted"},
	{"en", "added"},
	{"en", "left"},
	{"en", "changed the group"},
	{"ru", "Сообщения и звонки защищены сквозным шифрованием"},
	{"ru", "создал группу"},
	{"ru", "покинул группу"},
	{"ru", "изменил тему группы"},
}

func containsMarker(body string, markers []Marker) bool {
	for _, m := range markers {
		if strings.Contains(body, m.Phrase) {
			return true
		}
	}
	return false
}

func IsMediaPlaceholder(body string) bool { return containsMarker(body, MediaMarkers) }

func IsSystemNotice(body string) bool { return containsMarker(body, SystemMarkers) }
