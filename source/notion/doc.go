// Package notion normalizes Notion pages pulled through the Notion API.
//
// Pages have no natural unique version key: an edit keeps the page id
// but changes the content, and the stream stores every version. The
// stream therefore dedups by content hash, and this normalizer's only
// jobs are flattening page metadata and keeping the heavyweight block
// tree intact for the blob store.
package notion
