package notifier

import (
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/garage-meetup-api/internal/config"
	"github.com/gdg-garage/garage-meetup-api/internal/models"
)

// Notifier announces event milestones. Delivery is best effort: callers log
// failures and never fail the originating request over them.
type Notifier interface {
	NotifyEventCreated(event models.Event, creator models.User) error
	NotifyVotingClosed(event models.Event, winningTime *models.TimeOption, winningRestaurant *models.RestaurantOption) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(cfg *config.Config) (*DiscordNotifier, error) {
	if cfg.DiscordBotToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{
		session:   session,
		channelID: cfg.DiscordNotificationsChannelID,
	}, nil
}

func (n *DiscordNotifier) NotifyEventCreated(event models.Event, creator models.User) error {
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	deadlineStr := ""
	if event.VotingDeadline != nil {
		deadlineStr = fmt.Sprintf("\n**Vote until:** %s", event.VotingDeadline.Format("2006-01-02 15:04"))
	}

	message := fmt.Sprintf("📅 **New Event**\n**%s** by %s (<@%s>)\n**Time slots:** %d (%s)\n**Restaurants:** %d (%s)%s",
		event.Title,
		creator.Username,
		creator.DiscordID,
		len(event.TimeOptions),
		event.TimeOptionType,
		len(event.RestaurantOptions),
		event.RestaurantOptionType,
		deadlineStr,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}

func (n *DiscordNotifier) NotifyVotingClosed(event models.Event, winningTime *models.TimeOption, winningRestaurant *models.RestaurantOption) error {
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	timeStr := "not scheduled"
	if winningTime != nil {
		timeStr = fmt.Sprintf("%s - %s",
			winningTime.StartTime.Format(time.RFC822),
			winningTime.EndTime.Format("15:04"))
	}

	restaurantStr := ""
	if winningRestaurant != nil {
		restaurantStr = fmt.Sprintf("\n**Restaurant:** %s", winningRestaurant.Name)
	}

	message := fmt.Sprintf("🗳️ **Voting closed**\n**%s**\n**Time:** %s%s",
		event.Title,
		timeStr,
		restaurantStr,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
