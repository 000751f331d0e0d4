// Package list implements the doubly-linked free-list primitive whose nodes
// are embedded in the heap itself. A node is two consecutive words (prev,
// next) inside a free block's body; links hold the word offset of the linked
// node. The list owns no memory: callers hand in the backing byte slice on
// every mutation, and node storage lives and dies with the block it sits in.
//
// Links are raw word offsets rather than Go pointers so the node's identity
// round-trips with the physical block structure.
package list

import "github.com/joshuapare/heapkit/internal/format"

// Nil is the link value for "no node". Word 0 of the heap always holds the
// left fence, so offset 0 can never address a real node.
const Nil int32 = 0

// NodeWords is the number of words a node occupies in a free block body.
const NodeWords = 2

// List is one free list: head and tail word offsets plus a length counter.
// The zero value is an empty list.
type List struct {
	head int32
	tail int32
	n    int
}

// Init resets the list to empty. Nodes are not touched; they are owned by
// the blocks they live in.
func (l *List) Init() {
	l.head, l.tail, l.n = Nil, Nil, 0
}

// Empty reports whether the list holds no nodes.
func (l *List) Empty() bool { return l.head == Nil }

// Len returns the number of nodes in the list.
func (l *List) Len() int { return l.n }

// Begin returns the first node, or End() when the list is empty.
func (l *List) Begin() int32 { return l.head }

// End returns the past-the-end sentinel offset.
func (l *List) End() int32 { return Nil }

// Next returns the node following node, or Nil at the tail.
func Next(b []byte, node int32) int32 {
	_, next := readNode(b, node)
	return next
}

// PushFront links node at the head of the list. The node must not currently
// be a member of any list.
func (l *List) PushFront(b []byte, node int32) {
	writeNode(b, node, Nil, l.head)
	if l.head != Nil {
		setPrev(b, l.head, node)
	} else {
		l.tail = node
	}
	l.head = node
	l.n++
}

// InsertBefore links node immediately before at. Passing End() appends at
// the tail.
func (l *List) InsertBefore(b []byte, at, node int32) {
	if at == Nil {
		l.pushBack(b, node)
		return
	}
	prev, _ := readNode(b, at)
	writeNode(b, node, prev, at)
	setPrev(b, at, node)
	if prev != Nil {
		setNext(b, prev, node)
	} else {
		l.head = node
	}
	l.n++
}

// Remove unlinks node from the list. The node must be a member.
func (l *List) Remove(b []byte, node int32) {
	prev, next := readNode(b, node)
	if prev != Nil {
		setNext(b, prev, next)
	} else {
		l.head = next
	}
	if next != Nil {
		setPrev(b, next, prev)
	} else {
		l.tail = prev
	}
	writeNode(b, node, Nil, Nil)
	l.n--
}

func (l *List) pushBack(b []byte, node int32) {
	writeNode(b, node, l.tail, Nil)
	if l.tail != Nil {
		setNext(b, l.tail, node)
	} else {
		l.head = node
	}
	l.tail = node
	l.n++
}

func readNode(b []byte, node int32) (prev, next int32) {
	prev = int32(format.ReadU32(b, format.ByteOff(node)))
	next = int32(format.ReadU32(b, format.ByteOff(node+1)))
	return prev, next
}

func writeNode(b []byte, node, prev, next int32) {
	format.PutU32(b, format.ByteOff(node), uint32(prev))
	format.PutU32(b, format.ByteOff(node+1), uint32(next))
}

func setPrev(b []byte, node, prev int32) {
	format.PutU32(b, format.ByteOff(node), uint32(prev))
}

func setNext(b []byte, node, next int32) {
	format.PutU32(b, format.ByteOff(node+1), uint32(next))
}
