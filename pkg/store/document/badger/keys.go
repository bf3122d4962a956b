package badger

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so documents are organized with prefixed
// keys. A single namespace is enough here because document paths already
// encode the collection hierarchy:
//
// Data Type   Prefix   Key Format                                Value Type
// ==========================================================================
// Documents   "doc:"   doc:<collection>/<id>[/<collection>/<id>…]  docRecord (JSON)
//
// Why path keys work:
//
// 1. Point lookups
//    - Get/Set/Delete are O(1) key operations on the full path.
//    - Example: doc:users/t1/blogs/b1
//
// 2. Collection queries
//    - All documents of collection C share the prefix "doc:C/".
//    - A range scan over that prefix visits candidates in lexicographic
//      (i.e. document ID) order, which is exactly the query order the
//      contract promises — cursors are plain document IDs.
//    - Documents in nested subcollections also share the prefix; they are
//      skipped by checking that the key remainder contains no further "/".
//
// 3. Subcollection discovery
//    - The names of subcollections under a document are the first segment
//      of each key remainder under "doc:<path>/".
//
// The "doc:" prefix leaves room for future namespaces (indexes, metadata)
// without schema migration.

const docPrefix = "doc:"

// docKey returns the BadgerDB key for a document path.
func docKey(path string) []byte {
	return []byte(docPrefix + path)
}

// docPath returns the document path for a BadgerDB key.
func docPath(key []byte) string {
	return string(key[len(docPrefix):])
}
