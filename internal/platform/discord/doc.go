// Package discord connects dropletd to Discord using
// github.com/bwmarrin/discordgo. It delivers notifier messages, checks
// command permissions and feeds inbound messages to the bot.
package discord
