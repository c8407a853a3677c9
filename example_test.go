package redistore_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/redistore"
	"github.com/aretw0/redistore/pkg/domain"
)

func ExampleStore_CreateLease() {
	mr, _ := miniredis.Run()
	defer mr.Close()

	ctx := context.Background()
	store, err := redistore.New(ctx,
		redistore.Config{Addr: mr.Addr(), Namespace: "cache", Preconfigured: true},
		redistore.WithLockRetry(0, 0),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer store.Close()

	leaseFn := store.CreateLease(10 * time.Second)

	release, err := leaseFn(ctx, "report")
	fmt.Println("first:", err)

	_, err = leaseFn(ctx, "report")
	fmt.Println("second already leased:", errors.Is(err, domain.ErrAlreadyLeased))

	_ = release(ctx)
	// Output:
	// first: <nil>
	// second already leased: true
}

func ExampleStore_Key() {
	mr, _ := miniredis.Run()
	defer mr.Close()

	store, _ := redistore.New(context.Background(),
		redistore.Config{Addr: mr.Addr(), Namespace: "cache", Preconfigured: true})
	defer store.Close()

	fmt.Println(store.Key("entry"))
	// Output: cache:entry
}
