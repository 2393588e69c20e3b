package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrAborted is returned by every blocking operation once any rank of the world has failed
	ErrAborted = errors.New("parallel world aborted")
	// ErrScheduleMismatch reports a pairwise exchange whose sizes disagree between the two ranks
	ErrScheduleMismatch = errors.New("exchange schedule mismatch")
)

/*
World connects NP ranks, each driven by its own goroutine, through explicit messages only.
Every ordered pair of ranks owns an unbuffered channel, so a pairwise exchange is a blocking
rendezvous between the two partners and never a global barrier.
Collectives (Alltoall, AllreduceMin, Barrier) must be called in the same order on every rank.
*/
type World struct {
	NP      int
	ctx     context.Context
	links   [][]chan []float64 // links[from][to]
	gather  chan float64
	bcast   []chan float64
	mailbox *MailBox[idEnvelope]
}

type idEnvelope struct {
	From int
	IDs  []uint32
}

// Comm is the view of the World held by a single rank
type Comm struct {
	world *World
	rank  int
	// Double buffered outgoing payloads, one pair per peer, reused for the life of the run
	outBufs  [][2][]float64
	outRound []int
}

func NewWorld(ctx context.Context, NP int) (w *World) {
	if NP < 1 {
		panic(fmt.Errorf("world size must be positive, have %d", NP))
	}
	w = &World{
		NP:      NP,
		ctx:     ctx,
		links:   make([][]chan []float64, NP),
		gather:  make(chan float64, NP),
		bcast:   make([]chan float64, NP),
		mailbox: NewMailBox[idEnvelope](NP),
	}
	for from := 0; from < NP; from++ {
		w.links[from] = make([]chan []float64, NP)
		for to := 0; to < NP; to++ {
			if from != to {
				w.links[from][to] = make(chan []float64)
			}
		}
		w.bcast[from] = make(chan float64, 1)
	}
	return
}

func (w *World) Comm(rank int) *Comm {
	if rank < 0 || rank >= w.NP {
		panic(fmt.Errorf("rank %d out of range [0,%d)", rank, w.NP))
	}
	return &Comm{
		world:    w,
		rank:     rank,
		outBufs:  make([][2][]float64, w.NP),
		outRound: make([]int, w.NP),
	}
}

func (c *Comm) Rank() int { return c.rank }

func (c *Comm) Size() int { return c.world.NP }

func (c *Comm) Context() context.Context { return c.world.ctx }

/*
Sendrecv sends the contents of send to peer and fills recv with the payload peer sends back.
The two directions proceed independently, so both partners may call Sendrecv at the same time.
The payload is copied into a per-peer buffer owned by this rank; buffers alternate between rounds
so the partner can still be reading round k while this rank packs round k+1.
*/
func (c *Comm) Sendrecv(peer int, send, recv []float64) (err error) {
	var (
		w = c.world
	)
	if peer == c.rank || peer < 0 || peer >= w.NP {
		return fmt.Errorf("invalid exchange partner %d for rank %d", peer, c.rank)
	}
	slot := c.outRound[peer] % 2
	c.outRound[peer]++
	out := c.outBufs[peer][slot]
	if len(out) != len(send) {
		out = make([]float64, len(send))
		c.outBufs[peer][slot] = out
	}
	copy(out, send)
	var (
		sent, got bool
		sendCh    chan<- []float64
		recvCh    <-chan []float64
	)
	for !sent || !got {
		sendCh, recvCh = nil, nil
		if !sent {
			sendCh = w.links[c.rank][peer]
		}
		if !got {
			recvCh = w.links[peer][c.rank]
		}
		select {
		case sendCh <- out:
			sent = true
		case msg := <-recvCh:
			if len(msg) != len(recv) {
				return fmt.Errorf("%w: rank %d expected %d values from rank %d, received %d",
					ErrScheduleMismatch, c.rank, len(recv), peer, len(msg))
			}
			copy(recv, msg)
			got = true
		case <-w.ctx.Done():
			return ErrAborted
		}
	}
	return
}

// AllreduceMin returns the minimum of x over all ranks, identical on every rank
func (c *Comm) AllreduceMin(x float64) (min float64, err error) {
	var (
		w = c.world
	)
	if w.NP == 1 {
		return x, nil
	}
	if c.rank == 0 {
		min = x
		for i := 1; i < w.NP; i++ {
			select {
			case v := <-w.gather:
				min = math.Min(min, v)
			case <-w.ctx.Done():
				return 0, ErrAborted
			}
		}
		for r := 1; r < w.NP; r++ {
			select {
			case w.bcast[r] <- min:
			case <-w.ctx.Done():
				return 0, ErrAborted
			}
		}
		return
	}
	select {
	case w.gather <- x:
	case <-w.ctx.Done():
		return 0, ErrAborted
	}
	select {
	case min = <-w.bcast[c.rank]:
	case <-w.ctx.Done():
		return 0, ErrAborted
	}
	return
}

func (c *Comm) Barrier() (err error) {
	_, err = c.AllreduceMin(0)
	return
}

/*
Alltoall sends lists[p] to every rank p and returns, indexed by source rank, the lists every other rank sent here.
The list addressed to this rank itself is returned unchanged.
*/
func (c *Comm) Alltoall(lists [][]uint32) (received [][]uint32, err error) {
	var (
		w  = c.world
		mb = w.mailbox
	)
	if len(lists) != w.NP {
		return nil, fmt.Errorf("alltoall needs one list per rank, have %d for %d ranks", len(lists), w.NP)
	}
	received = make([][]uint32, w.NP)
	received[c.rank] = lists[c.rank]
	for p, list := range lists {
		if p == c.rank || len(list) == 0 {
			continue
		}
		mb.PostMessage(c.rank, p, idEnvelope{From: c.rank, IDs: list})
	}
	mb.DeliverMyMessages(c.rank)
	if err = c.Barrier(); err != nil {
		return nil, err
	}
	for _, msg := range mb.ReceiveMyMessages(c.rank) {
		received[msg.From] = append(received[msg.From], msg.IDs...)
	}
	mb.ClearMyMessages(c.rank)
	// Senders may not reuse their outbox until every rank has drained it
	if err = c.Barrier(); err != nil {
		return nil, err
	}
	return
}
