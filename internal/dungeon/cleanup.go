package dungeon

// cleanUpDungeon удаляет комнаты, не соединённые коридором.
// Процедурные комнаты проверяются по одной, заготовки удаляются целой
// группой, если ни одна плитка пути не соединена. Ячейки сетки не сбрасываются.
func (g *Generator) cleanUpDungeon() {
	if g.cfg.DebugMode {
		return
	}

	removed := 0
	for _, group := range g.groups {
		if g.cfg.ProceduralRooms {
			removed += g.removeUnconnectedRooms(group)
		} else {
			removed += g.removeUnconnectedPremade(group)
		}
	}

	kept := g.groups[:0]
	for _, group := range g.groups {
		if len(group.all()) > 0 {
			kept = append(kept, group)
		}
	}
	g.groups = kept

	g.metrics.RoomsRemoved(removed)
	if removed > 0 {
		g.log.Debug("🧹 Удалено несоединённых комнат: %d", removed)
	}
}

func (g *Generator) removeUnconnectedRooms(group *Group) int {
	removed := 0
	kept := group.Rooms[:0]
	for _, r := range group.Rooms {
		if r.ConnectedToCorridor {
			kept = append(kept, r)
			continue
		}
		g.removeRoom(r)
		removed++
	}
	group.Rooms = kept
	return removed
}

// removeUnconnectedPremade не трогает группы без заготовки (вход)
func (g *Generator) removeUnconnectedPremade(group *Group) int {
	if group.Premade == nil || group.Connected() {
		return 0
	}
	rooms := group.all()
	for _, r := range rooms {
		g.removeRoom(r)
	}
	group.Premade = nil
	group.Rooms = nil
	return len(rooms)
}

func (g *Generator) removeRoom(r *Room) {
	for i, loc := range g.replicated {
		if loc == r.Anchor {
			g.replicated = append(g.replicated[:i], g.replicated[i+1:]...)
			break
		}
	}
	for cell, owner := range g.roomAt {
		if owner == r {
			delete(g.roomAt, cell)
		}
	}
	if r.handle != nil {
		g.spawner.Destroy(r.handle)
		r.handle = nil
	}
}
