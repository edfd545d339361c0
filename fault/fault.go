// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - grouped by area
var (
	ErrAlreadyInitialised = ProcessError("already initialised")
	ErrNotInitialised     = ProcessError("not initialised")

	ErrConfigDataDirectory  = InvalidError("data directory is not usable")
	ErrInvalidChain         = InvalidError("invalid chain")
	ErrInvalidCurrency      = InvalidError("invalid currency")

	ErrNotDigest            = InvalidError("not a digest")
	ErrNotPublicKey         = InvalidError("not a public key")
	ErrNotTransactionPack   = InvalidError("not a transaction pack")
	ErrTransactionNotFound  = NotFoundError("transaction not found")
	ErrOutputNotSpent       = NotFoundError("output not spent")

	// opret codec
	ErrOpretTooShort       = InvalidError("opret too short")
	ErrNotMarmaraOpret     = InvalidError("not a marmara opret")
	ErrOpretVersion        = InvalidError("unsupported opret version")
	ErrOpretFuncID         = InvalidError("unsupported opret funcid")
	ErrOpretTruncated      = InvalidError("opret payload truncated")
	ErrOpretTrailingBytes  = InvalidError("opret has trailing bytes")
	ErrNotActivatedOpret   = InvalidError("not an activated or coinbase opret")
	ErrNotLoopOpret        = InvalidError("not a credit loop opret")

	// consensus: top level
	ErrNotMarmaraChain = InvalidError("-ac_marmara must be set for marmara CC")
	ErrNoVouts         = InvalidError("no vouts")
	ErrNoOpreturns     = InvalidError("invalid or no opreturns")
	ErrFallThrough     = InvalidError("fall through error")

	ErrUnexpectedLoopFuncID    = ProcessError("unexpected tx funcid MARMARA_LOOP")
	ErrUnexpectedCreateFuncID  = ProcessError("unexpected tx funcid MARMARA_CREATELOOP")
	ErrUnexpectedRequestFuncID = ProcessError("unexpected tx funcid MARMARA_REQUEST")

	// consensus: pool
	ErrPoolVinTxMissing   = InvalidError("cant find vinTx")
	ErrPoolNonCoinbase    = InvalidError("noncoinbase input")
	ErrPoolCoinbaseVouts  = InvalidError("coinbase doesnt have 2 vouts")
	ErrPoolOpretMismatch  = InvalidError("mismatched opreturn")

	// consensus: issue/transfer
	ErrIssueNoVouts           = ProcessError("bad issue or transfer tx: no vouts")
	ErrNotIssueTx             = ProcessError("not an issue or transfer tx")
	ErrTooManyVins            = ProcessError("too many vins in issue/transfer tx")
	ErrTooManyEndorsers       = ProcessError("too many endorsers in credit loop")
	ErrGlobalPkSpend          = ProcessError("cannot spend activated coins using marmara global pubkey")
	ErrVinTxUnavailable       = ProcessError("issue/transfer tx: cannot get vintx")
	ErrForeignCCVin           = ProcessError("issue/transfer tx cannot have non-marmara cc vins")
	ErrNoRequestVin           = ProcessError("invalid issue/transfer tx: no request tx vin")
	ErrNoBatonVin             = ProcessError("no baton vin in transfer tx")
	ErrBatonNotCC             = ProcessError("no marmara cc vins in baton tx for transfer tx")
	ErrEscrowNotAllowed       = ProcessError("escrow not allowed by consensus rules")
	ErrDisputeExpiryTooFar    = ProcessError("dispute expiry height too far in the future")

	// consensus: request tx
	ErrRequestTxidEmpty     = ProcessError("requesttxid can't be empty")
	ErrRequestNoCreateTxid  = ProcessError("can't get createtxid from requesttxid (request tx could be in mempool)")
	ErrNoLoopCreationData   = ProcessError("cannot get loop creation data")
	ErrRequestTxUnavailable = ProcessError("cannot get request transaction")
	ErrRequestTxInMempool   = ProcessError("request transaction still in mempool")
	ErrRequestTxOpret       = ProcessError("cannot decode request tx opreturn data")
	ErrReceiverNotSigner    = ProcessError("receiver pubkey does not match signer of request tx")
	ErrSelfCredit           = ProcessError("sender pk signed request tx, cannot request credit from self")
	ErrMaturityNotFuture    = ProcessError("credit loop must mature in the future")
	ErrNotCreateTx          = ProcessError("not a create tx")
	ErrNotRequestTx         = ProcessError("not a request tx")

	// consensus: lcl redistribution
	ErrEndorsersNumber       = ProcessError("could not get credit loop endorsers number")
	ErrLoopCreationData      = ProcessError("could not get credit loop creation data")
	ErrIssueNoOpret          = ProcessError("no opreturn found in the last vout of issue/transfer tx")
	ErrLockedPubkeyMismatch  = ProcessError("MARMARA_LOCKED cc output incorrect: pubkey does not match")
	ErrLockedAmountIncorrect = ProcessError("MARMARA_LOCKED cc output amount incorrect")
	ErrLoopAmountInvalid     = ProcessError("tx LCL amount invalid")
	ErrEndorserPksNumber     = ProcessError("incorrect number of endorsers pubkeys found in tx")
	ErrNormalPayoutIncorrect = ProcessError("normal output amount incorrect")
	ErrRedistributionInvalid = ProcessError("invalid redistribution to normal outputs")
	ErrUnexpectedNonLCLVin   = ProcessError("issue/transfer tx has unexpected non-lcl marmara cc vin")
	ErrLoopPubkeysMismatch   = ProcessError("issue/transfer tx has incorrect loop pubkeys")

	// consensus: settlement
	ErrSettleNoVouts         = ProcessError("bad settlement tx: no vouts")
	ErrSettleNoVins          = ProcessError("bad settlement tx: no vins")
	ErrNotSettlementTx       = ProcessError("not a settlement tx")
	ErrSettleBadVin0         = ProcessError("incorrect settlement tx vin0")
	ErrIssueTxUnavailable    = ProcessError("could not load issue tx")
	ErrIssueTxRevalidates    = ProcessError("issue tx must not revalidate after loop maturity")
	ErrNoCreditLoop          = ProcessError("could not get credit loop or no endorsers")
	ErrLoopNotMatured        = ProcessError("credit loop does not mature yet")
	ErrBatonTxUnavailable    = ProcessError("could not load baton tx")
	ErrBatonNoVouts          = ProcessError("bad baton tx: no vouts")
	ErrBatonNotIssueTransfer = ProcessError("baton tx not a issue or transfer tx")
	ErrSettleCCVout          = ProcessError("settlement tx cannot have unknown cc vouts")
	ErrSettleFullIncorrect   = ProcessError("payment to holder incorrect for full settlement")
	ErrSettlePartIncorrect   = ProcessError("payment to holder incorrect for partial settlement")

	// settlement driver
	ErrLoopAlreadySettled = ExistsError("credit loop already settled")
	ErrEmptyLoopPot       = ProcessError("no locked-in-loop outputs to settle")
	ErrBadBatonTxid       = ProcessError("could not trace baton for credit loop")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
