package domain

const (
	RoleStreamer = "STREAMER"
	RoleClipper  = "CLIPPER"
	RoleAdmin    = "ADMIN"
)

const (
	CampaignStatusDraft  = "DRAFT"
	CampaignStatusActive = "ACTIVE"
	CampaignStatusPaused = "PAUSED"
	CampaignStatusClosed = "CLOSED"
)

const (
	SubmissionStatusPending  = "PENDING"
	SubmissionStatusApproved = "APPROVED"
	SubmissionStatusRejected = "REJECTED"
)

// Withdrawal lifecycle. REQUESTED holds the wallet reserve; PROCESSING is
// persisted before the external transfer is issued so a crashed dispatch can be
// retried; COMPLETED requires both the reserve and the transfer to have
// succeeded; FAILED means the reserve has been refunded.
const (
	WithdrawalStatusRequested  = "REQUESTED"
	WithdrawalStatusProcessing = "PROCESSING"
	WithdrawalStatusCompleted  = "COMPLETED"
	WithdrawalStatusFailed     = "FAILED"
)

const (
	DepositStatusPending   = "PENDING"
	DepositStatusCompleted = "COMPLETED"
	DepositStatusFailed    = "FAILED"
)

// Wallet transaction types.
const (
	TxTypeDeposit          = "DEPOSIT"
	TxTypeEarning          = "EARNING"
	TxTypeCampaignFunding  = "CAMPAIGN_FUNDING"
	TxTypeWithdrawal       = "WITHDRAWAL"
	TxTypeWithdrawalRefund = "WITHDRAWAL_REFUND"
)
