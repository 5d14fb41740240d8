package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewConnection() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func TestVehicleLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewVehicleRepository(db)

	if err := repo.CreateVehicle("g1", "VSAV 1", "https://example.com/vsav1.rss"); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}

	if err := repo.CreateVehicle("g1", "VSAV 1", "https://example.com/other.rss"); err == nil {
		t.Error("expected duplicate vehicle to fail")
	}

	vehicle, err := repo.GetVehicle("g1", "VSAV 1")
	if err != nil {
		t.Fatalf("GetVehicle() error = %v", err)
	}
	if vehicle == nil {
		t.Fatal("expected vehicle, got nil")
	}
	if vehicle.RSSURL != "https://example.com/vsav1.rss" {
		t.Errorf("RSSURL = %q", vehicle.RSSURL)
	}

	missing, err := repo.GetVehicle("g1", "FPT 2")
	if err != nil {
		t.Fatalf("GetVehicle() error = %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown vehicle")
	}

	deleted, err := repo.DeleteVehicle("g1", "VSAV 1")
	if err != nil {
		t.Fatalf("DeleteVehicle() error = %v", err)
	}
	if !deleted {
		t.Error("expected deletion to report true")
	}

	deleted, err = repo.DeleteVehicle("g1", "VSAV 1")
	if err != nil {
		t.Fatalf("DeleteVehicle() error = %v", err)
	}
	if deleted {
		t.Error("expected second deletion to report false")
	}
}

func TestGetVehiclesOrderedByName(t *testing.T) {
	db := newTestDB(t)
	repo := NewVehicleRepository(db)

	for _, name := range []string{"VSAV 2", "FPT 1", "VSAV 1"} {
		if err := repo.CreateVehicle("g1", name, "https://example.com/feed.rss"); err != nil {
			t.Fatalf("CreateVehicle(%q) error = %v", name, err)
		}
	}
	if err := repo.CreateVehicle("g2", "EPA 1", "https://example.com/epa.rss"); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}

	vehicles, err := repo.GetVehicles("g1")
	if err != nil {
		t.Fatalf("GetVehicles() error = %v", err)
	}
	if len(vehicles) != 3 {
		t.Fatalf("len(vehicles) = %d, want 3", len(vehicles))
	}
	for i, want := range []string{"FPT 1", "VSAV 1", "VSAV 2"} {
		if vehicles[i].Name != want {
			t.Errorf("vehicles[%d].Name = %q, want %q", i, vehicles[i].Name, want)
		}
	}

	ids, err := repo.GetDistinctGuildIDs()
	if err != nil {
		t.Fatalf("GetDistinctGuildIDs() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != "g1" || ids[1] != "g2" {
		t.Errorf("GetDistinctGuildIDs() = %v", ids)
	}

	count, err := repo.GetVehicleCount()
	if err != nil {
		t.Fatalf("GetVehicleCount() error = %v", err)
	}
	if count != 4 {
		t.Errorf("GetVehicleCount() = %d, want 4", count)
	}

	guilds, err := repo.GetGuildCount()
	if err != nil {
		t.Fatalf("GetGuildCount() error = %v", err)
	}
	if guilds != 2 {
		t.Errorf("GetGuildCount() = %d, want 2", guilds)
	}
}

func TestStateUpsert(t *testing.T) {
	db := newTestDB(t)
	vehicles := NewVehicleRepository(db)
	states := NewStateRepository(db)

	if err := vehicles.CreateVehicle("g1", "VSAV 1", "https://example.com/vsav1.rss"); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}

	state, err := states.GetState("g1", "VSAV 1")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state != nil {
		t.Fatal("expected nil state before first poll")
	}

	seen := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	err = states.UpsertState(VehicleState{
		GuildID: "g1", Name: "VSAV 1",
		LastStatus: "Disponible", LastSeenAt: seen, LastPayloadHash: "aaa",
	})
	if err != nil {
		t.Fatalf("UpsertState() error = %v", err)
	}

	err = states.UpsertState(VehicleState{
		GuildID: "g1", Name: "VSAV 1",
		LastStatus: "En intervention", LastSeenAt: seen.Add(time.Minute), LastPayloadHash: "bbb",
	})
	if err != nil {
		t.Fatalf("UpsertState() error = %v", err)
	}

	state, err = states.GetState("g1", "VSAV 1")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state == nil {
		t.Fatal("expected state after upsert")
	}
	if state.LastStatus != "En intervention" || state.LastPayloadHash != "bbb" {
		t.Errorf("state = %+v", state)
	}
}

func TestDeleteVehicleCascades(t *testing.T) {
	db := newTestDB(t)
	vehicles := NewVehicleRepository(db)
	states := NewStateRepository(db)
	subs := NewSubscriptionRepository(db)

	if err := vehicles.CreateVehicle("g1", "VSAV 1", "https://example.com/vsav1.rss"); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}
	err := states.UpsertState(VehicleState{
		GuildID: "g1", Name: "VSAV 1",
		LastStatus: "Disponible", LastSeenAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("UpsertState() error = %v", err)
	}
	if err := subs.CreateSubscription("g1", "u1", "VSAV 1"); err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}

	if _, err := vehicles.DeleteVehicle("g1", "VSAV 1"); err != nil {
		t.Fatalf("DeleteVehicle() error = %v", err)
	}

	state, err := states.GetState("g1", "VSAV 1")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state != nil {
		t.Error("expected state to be removed with vehicle")
	}

	remaining, err := subs.GetSubscriptions("g1", "VSAV 1")
	if err != nil {
		t.Fatalf("GetSubscriptions() error = %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected subscriptions removed, got %d", len(remaining))
	}
}

func TestGetVehiclesWithState(t *testing.T) {
	db := newTestDB(t)
	vehicles := NewVehicleRepository(db)
	states := NewStateRepository(db)

	if err := vehicles.CreateVehicle("g1", "FPT 1", "https://example.com/fpt1.rss"); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}
	if err := vehicles.CreateVehicle("g1", "VSAV 1", "https://example.com/vsav1.rss"); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}
	err := states.UpsertState(VehicleState{
		GuildID: "g1", Name: "VSAV 1",
		LastStatus: "Disponible", LastSeenAt: time.Now().UTC(), LastPayloadHash: "abc",
	})
	if err != nil {
		t.Fatalf("UpsertState() error = %v", err)
	}

	joined, err := vehicles.GetVehiclesWithState("g1")
	if err != nil {
		t.Fatalf("GetVehiclesWithState() error = %v", err)
	}
	if len(joined) != 2 {
		t.Fatalf("len(joined) = %d, want 2", len(joined))
	}
	if joined[0].Name != "FPT 1" || joined[0].State != nil {
		t.Errorf("joined[0] = %+v, want unpolled FPT 1", joined[0])
	}
	if joined[1].Name != "VSAV 1" || joined[1].State == nil {
		t.Fatalf("joined[1] = %+v, want polled VSAV 1", joined[1])
	}
	if joined[1].State.LastStatus != "Disponible" {
		t.Errorf("LastStatus = %q", joined[1].State.LastStatus)
	}
}

func TestSubscriptions(t *testing.T) {
	db := newTestDB(t)
	vehicles := NewVehicleRepository(db)
	subs := NewSubscriptionRepository(db)

	if err := vehicles.CreateVehicle("g1", "VSAV 1", "https://example.com/vsav1.rss"); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}
	if err := vehicles.CreateVehicle("g1", "FPT 1", "https://example.com/fpt1.rss"); err != nil {
		t.Fatalf("CreateVehicle() error = %v", err)
	}

	if err := subs.CreateSubscription("g1", "u1", "VSAV 1"); err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if err := subs.CreateSubscription("g1", "u1", "VSAV 1"); err != nil {
		t.Fatalf("duplicate CreateSubscription() error = %v", err)
	}
	if err := subs.CreateSubscription("g1", "u2", "VSAV 1"); err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if err := subs.CreateSubscription("g1", "u1", "FPT 1"); err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}

	vehicleSubs, err := subs.GetSubscriptions("g1", "VSAV 1")
	if err != nil {
		t.Fatalf("GetSubscriptions() error = %v", err)
	}
	if len(vehicleSubs) != 2 {
		t.Fatalf("len(vehicleSubs) = %d, want 2", len(vehicleSubs))
	}

	userSubs, err := subs.GetUserSubscriptions("g1", "u1")
	if err != nil {
		t.Fatalf("GetUserSubscriptions() error = %v", err)
	}
	if len(userSubs) != 2 {
		t.Fatalf("len(userSubs) = %d, want 2", len(userSubs))
	}
	if userSubs[0].Name != "FPT 1" || userSubs[1].Name != "VSAV 1" {
		t.Errorf("user subscriptions out of order: %+v", userSubs)
	}

	count, err := subs.GetSubscriptionCount()
	if err != nil {
		t.Fatalf("GetSubscriptionCount() error = %v", err)
	}
	if count != 3 {
		t.Errorf("GetSubscriptionCount() = %d, want 3", count)
	}

	deleted, err := subs.DeleteSubscription("g1", "u1", "VSAV 1")
	if err != nil {
		t.Fatalf("DeleteSubscription() error = %v", err)
	}
	if !deleted {
		t.Error("expected deletion to report true")
	}
	deleted, err = subs.DeleteSubscription("g1", "u1", "VSAV 1")
	if err != nil {
		t.Fatalf("DeleteSubscription() error = %v", err)
	}
	if deleted {
		t.Error("expected second deletion to report false")
	}
}

func TestGuildConfig(t *testing.T) {
	db := newTestDB(t)
	repo := NewGuildConfigRepository(db)

	config, err := repo.GetGuildConfig("g1")
	if err != nil {
		t.Fatalf("GetGuildConfig() error = %v", err)
	}
	if config != nil {
		t.Fatal("expected nil config for unconfigured guild")
	}

	if err := repo.SetNotificationChannel("g1", "chan-1"); err != nil {
		t.Fatalf("SetNotificationChannel() error = %v", err)
	}

	config, err = repo.GetGuildConfig("g1")
	if err != nil {
		t.Fatalf("GetGuildConfig() error = %v", err)
	}
	if config == nil {
		t.Fatal("expected config after channel set")
	}
	if config.ChannelID != "chan-1" {
		t.Errorf("ChannelID = %q", config.ChannelID)
	}
	if config.PollingSec != 120 {
		t.Errorf("PollingSec = %d, want default 120", config.PollingSec)
	}
}

func TestGuildConfigMentionRoles(t *testing.T) {
	db := newTestDB(t)
	repo := NewGuildConfigRepository(db)

	if err := repo.AddMentionRoles("g1", []string{"r1", "r2"}); err != nil {
		t.Fatalf("AddMentionRoles() error = %v", err)
	}
	// Re-adding r2 must not duplicate it or disturb the order.
	if err := repo.AddMentionRoles("g1", []string{"r2", "r3"}); err != nil {
		t.Fatalf("AddMentionRoles() error = %v", err)
	}

	config, err := repo.GetGuildConfig("g1")
	if err != nil {
		t.Fatalf("GetGuildConfig() error = %v", err)
	}
	roles := config.RoleIDs()
	if len(roles) != 3 || roles[0] != "r1" || roles[1] != "r2" || roles[2] != "r3" {
		t.Errorf("RoleIDs() = %v, want [r1 r2 r3]", roles)
	}

	if err := repo.RemoveMentionRoles("g1", []string{"r2", "missing"}); err != nil {
		t.Fatalf("RemoveMentionRoles() error = %v", err)
	}

	config, err = repo.GetGuildConfig("g1")
	if err != nil {
		t.Fatalf("GetGuildConfig() error = %v", err)
	}
	roles = config.RoleIDs()
	if len(roles) != 2 || roles[0] != "r1" || roles[1] != "r3" {
		t.Errorf("RoleIDs() = %v, want [r1 r3]", roles)
	}

	// Removing roles from an unconfigured guild is a no-op.
	if err := repo.RemoveMentionRoles("g2", []string{"r1"}); err != nil {
		t.Fatalf("RemoveMentionRoles() error = %v", err)
	}
}

func TestSetPollingInterval(t *testing.T) {
	db := newTestDB(t)
	repo := NewGuildConfigRepository(db)

	if err := repo.SetPollingInterval("g1", 60); err != nil {
		t.Fatalf("SetPollingInterval() error = %v", err)
	}
	config, err := repo.GetGuildConfig("g1")
	if err != nil {
		t.Fatalf("GetGuildConfig() error = %v", err)
	}
	if config.PollingSec != 60 {
		t.Errorf("PollingSec = %d, want 60", config.PollingSec)
	}

	for _, seconds := range []int{29, 121, 0, -5} {
		if err := repo.SetPollingInterval("g1", seconds); err == nil {
			t.Errorf("SetPollingInterval(%d) expected error", seconds)
		}
	}
}

func TestRecordNotification(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuditRepository(db)

	err := repo.RecordNotification(AuditEntry{
		GuildID: "g1", Name: "VSAV 1", Status: "Disponible",
		ChannelType: "dm", Success: true,
	})
	if err != nil {
		t.Fatalf("RecordNotification() error = %v", err)
	}
	err = repo.RecordNotification(AuditEntry{
		GuildID: "g1", Name: "VSAV 1", Status: "Disponible",
		ChannelType: "dm", Success: false, Error: "recipient blocked DMs",
	})
	if err != nil {
		t.Fatalf("RecordNotification() error = %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM audit_log WHERE guild_id = ?", "g1").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 2 {
		t.Errorf("audit rows = %d, want 2", count)
	}
}
