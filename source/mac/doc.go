// Package mac normalizes payloads from the Mac agent: Messages rows
// and application focus events.
//
// Messages timestamps come straight from the chat.db Core Data columns
// (seconds, or nanoseconds on newer releases, since 2001-01-01), so
// every date field funnels through the Apple-epoch parser.
package mac
