package indexer

import (
	"context"
	"time"

	"github.com/annosync/annosync/annopage"
	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/metadata"
	"github.com/annosync/annosync/record"
	"github.com/annosync/annosync/retry"
	"golang.org/x/xerrors"
)

// isPermanent reports errors that retrying cannot fix.
func isPermanent(err error) bool {
	return xerrors.Is(err, metadata.ErrNotFound) ||
		xerrors.Is(err, record.ErrMalformedKey) ||
		xerrors.Is(err, index.ErrMissingKey) ||
		xerrors.Is(err, context.Canceled) ||
		xerrors.Is(err, context.DeadlineExceeded)
}

func withPermanent(p retry.Policy) retry.Policy {
	if p.Permanent == nil {
		p.Permanent = isPermanent
	}
	return p
}

// RetryingSourceStore wraps a SourceStore so that failed calls are retried
// according to policy.
func RetryingSourceStore(s SourceStore, policy retry.Policy) SourceStore {
	return &retryingSourceStore{store: s, policy: withPermanent(policy)}
}

type retryingSourceStore struct {
	store  SourceStore
	policy retry.Policy
}

func (r *retryingSourceStore) ExistsActive(ctx context.Context, id record.ID) (active bool, err error) {
	err = r.policy.Do(ctx, "exists_active", func(ctx context.Context) error {
		active, err = r.store.ExistsActive(ctx, id)
		return err
	})
	return active, err
}

func (r *retryingSourceStore) Entries(ctx context.Context, id record.ID) (entries []*annopage.Entry, err error) {
	err = r.policy.Do(ctx, "entries", func(ctx context.Context) error {
		entries, err = r.store.Entries(ctx, id)
		return err
	})
	return entries, err
}

func (r *retryingSourceStore) ChangedSince(ctx context.Context, since time.Time) (it annopage.IDIterator, err error) {
	err = r.policy.Do(ctx, "changed_since", func(ctx context.Context) error {
		it, err = r.store.ChangedSince(ctx, since)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &retryingIDIterator{IDIterator: it, ctx: ctx, policy: r.policy}, nil
}

// retryingIDIterator re-runs failed page fetches of the wrapped iterator.
type retryingIDIterator struct {
	annopage.IDIterator
	ctx    context.Context
	policy retry.Policy
	err    error
}

func (it *retryingIDIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if it.IDIterator.Next() {
		return true
	}

	var more bool
	it.err = it.policy.Resume(it.ctx, "changed_since", it.IDIterator.Error(), func(context.Context) error {
		more = it.IDIterator.Next()
		return it.IDIterator.Error()
	})
	return more && it.err == nil
}

func (it *retryingIDIterator) Error() error { return it.err }

// RetryingMetadataIndex wraps a MetadataIndex so that failed calls are
// retried according to policy. Lookups of missing documents are not retried.
func RetryingMetadataIndex(m MetadataIndex, policy retry.Policy) MetadataIndex {
	return &retryingMetadataIndex{index: m, policy: withPermanent(policy)}
}

type retryingMetadataIndex struct {
	index  MetadataIndex
	policy retry.Policy
}

func (r *retryingMetadataIndex) FindByID(ctx context.Context, key string) (doc *metadata.Document, err error) {
	err = r.policy.Do(ctx, "find_metadata", func(ctx context.Context) error {
		doc, err = r.index.FindByID(ctx, key)
		return err
	})
	return doc, err
}

// RetryingFulltextIndex wraps a FulltextIndex so that failed calls are
// retried according to policy.
func RetryingFulltextIndex(f FulltextIndex, policy retry.Policy) FulltextIndex {
	return &retryingFulltextIndex{index: f, policy: withPermanent(policy)}
}

type retryingFulltextIndex struct {
	index  FulltextIndex
	policy retry.Policy
}

func (r *retryingFulltextIndex) Exists(ctx context.Context, key string) (exists bool, err error) {
	err = r.policy.Do(ctx, "exists", func(ctx context.Context) error {
		exists, err = r.index.Exists(ctx, key)
		return err
	})
	return exists, err
}

func (r *retryingFulltextIndex) Schema(ctx context.Context) (schema *index.Schema, err error) {
	err = r.policy.Do(ctx, "schema", func(ctx context.Context) error {
		schema, err = r.index.Schema(ctx)
		return err
	})
	return schema, err
}

func (r *retryingFulltextIndex) Records(ctx context.Context) (it index.Iterator, err error) {
	err = r.policy.Do(ctx, "records", func(ctx context.Context) error {
		it, err = r.index.Records(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &retryingRecordIterator{Iterator: it, ctx: ctx, policy: r.policy}, nil
}

// retryingRecordIterator re-runs failed page fetches of the wrapped iterator.
type retryingRecordIterator struct {
	index.Iterator
	ctx    context.Context
	policy retry.Policy
	err    error
}

func (it *retryingRecordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	if it.Iterator.Next() {
		return true
	}

	var more bool
	it.err = it.policy.Resume(it.ctx, "records", it.Iterator.Error(), func(context.Context) error {
		more = it.Iterator.Next()
		return it.Iterator.Error()
	})
	return more && it.err == nil
}

func (it *retryingRecordIterator) Error() error { return it.err }

func (r *retryingFulltextIndex) Update(ctx context.Context, updates []*index.Update) error {
	return r.policy.Do(ctx, "update", func(ctx context.Context) error {
		return r.index.Update(ctx, updates)
	})
}

func (r *retryingFulltextIndex) Delete(ctx context.Context, keys []string) error {
	return r.policy.Do(ctx, "delete", func(ctx context.Context) error {
		return r.index.Delete(ctx, keys)
	})
}

func (r *retryingFulltextIndex) LatestTimestamp(ctx context.Context, field string) (ts time.Time, err error) {
	err = r.policy.Do(ctx, "latest_timestamp", func(ctx context.Context) error {
		ts, err = r.index.LatestTimestamp(ctx, field)
		return err
	})
	return ts, err
}
