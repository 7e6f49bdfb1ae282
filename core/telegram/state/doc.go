// Package state provides a lightweight FSM/session store for Telegram bots.
// Sessions are keyed by Telegram user id and carry a bot-defined payload;
// updates for one user run one at a time.
package state
