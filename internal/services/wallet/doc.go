/*
Package wallet is the read side of the wallet store.

Wallets are created lazily per (user, wallet type) and are never deleted.
Balances change only inside an atomic unit of the transaction coordinator,
through models.Wallet.ApplyAvailableDelta; this package never mutates a
balance.

Usage:

	svc := wallet.NewService(store, balanceCache, wallet.Config{DefaultCurrency: "USD"}, collector, log)

	// Create (or fetch) the user's creator wallet
	w, err := svc.GetOrCreateWallet(ctx, userID, models.WalletTypeCreator)

	// Read a balance snapshot, served from the cache when possible
	b, err := svc.GetBalance(ctx, w.ID)

Cache Management:

GetBalance is read-through. Concurrent misses for the same wallet are
collapsed into one store read. The coordinator invalidates a wallet's entry
after every commit that touches it.
*/
package wallet
