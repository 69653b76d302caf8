package memres

import "fmt"

func Example() {
	tr := NewTracking(Heap())
	pool := NewPool(tr)

	for i := 0; i < 100; i++ {
		b, _ := pool.Allocate(48, 8)
		pool.Deallocate(b, 8)
	}
	fmt.Println(tr.Stats().Allocations)

	pool.Release()
	fmt.Println(tr.Stats().Deallocations)

	// Output:
	// 1
	// 1
}

func ExampleMonotonic() {
	var storage [6]uint32
	m := NewMonotonic(AsBytes(storage[:]), Null())

	idx, _ := Slice[uint32](m, 6)
	fmt.Println(len(idx), m.InInitial(AsBytes(idx)))

	_, err := Slice[uint32](m, 1)
	fmt.Println(err != nil)

	m.Release()
	idx, _ = Slice[uint32](m, 3)
	fmt.Println(len(idx), m.InInitial(AsBytes(idx)))

	// Output:
	// 6 true
	// true
	// 3 true
}
