package redisx

// Draft submit idempotency: idem:draft:submit:{draft_id} -> order_id, or "-" while in flight
const KeyIdemDraftSubmit = "idem:draft:submit:%s"
