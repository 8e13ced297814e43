package stream

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Queue", func() {
	It("returns nothing when empty", func() {
		q := NewQueue()
		Expect(q.Drain()).To(BeNil())
		Expect(q.Len()).To(Equal(0))
	})

	It("drains everything in send order", func() {
		q := NewQueue()
		for i := 1; i <= 5; i++ {
			q.Send(Message{Kind: KindFrame, Seq: i})
		}
		Expect(q.Len()).To(Equal(5))

		got := q.Drain()
		Expect(got).To(HaveLen(5))
		for i, m := range got {
			Expect(m.Seq).To(Equal(i + 1))
		}
		Expect(q.Drain()).To(BeNil())
	})

	It("signals readiness after a send", func() {
		q := NewQueue()
		Consistently(q.Ready()).ShouldNot(Receive())

		q.Send(Message{Kind: KindEnded})
		q.Send(Message{Kind: KindEnded})
		Eventually(q.Ready()).Should(Receive())
		Expect(q.Drain()).To(HaveLen(2))
	})

	It("keeps each producer's order with concurrent senders", func() {
		q := NewQueue()
		const producers, perProducer = 4, 200

		var wg sync.WaitGroup
		for p := 0; p < producers; p++ {
			wg.Add(1)
			go func(gen uint64) {
				defer wg.Done()
				for i := 1; i <= perProducer; i++ {
					q.Send(Message{Kind: KindFrame, Gen: gen, Seq: i})
				}
			}(uint64(p))
		}
		wg.Wait()

		last := make(map[uint64]int)
		got := q.Drain()
		Expect(got).To(HaveLen(producers * perProducer))
		for _, m := range got {
			Expect(m.Seq).To(Equal(last[m.Gen] + 1))
			last[m.Gen] = m.Seq
		}
	})
})
